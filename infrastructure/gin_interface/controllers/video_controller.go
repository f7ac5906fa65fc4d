package controllers

import (
	"context"
	"errors"
	"github.com/gin-gonic/gin"
	"net/http"
	"net/url"
	"storybook-generator/application/ports/inbound"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
	"storybook-generator/infrastructure/gin_interface/dto"
	"storybook-generator/middleware"
)

type VideoController interface {
	CreateVideo(c *gin.Context)
	DownloadVideo(c *gin.Context)
	ConfirmAuthorization(c *gin.Context)
	RegisterRoutes(g *gin.Engine, stream gin.HandlerFunc)
}

type videoController struct {
	logger       outbound.LoggerPort
	videoCreator inbound.VideoCreatorPort
	state        inbound.StorybookStatePort
	viewer       inbound.StorybookViewerPort
	locale       string
}

func NewVideoController(logger outbound.LoggerPort, videoCreator inbound.VideoCreatorPort, state inbound.StorybookStatePort,
	viewer inbound.StorybookViewerPort, locale string) VideoController {
	return &videoController{
		logger:       logger,
		videoCreator: videoCreator,
		state:        state,
		viewer:       viewer,
		locale:       locale,
	}
}

func (v *videoController) CreateVideo(c *gin.Context) {
	if v.state.Status().IsLoading {
		abortWithError(c, v.logger, v.locale, domain.ErrGenerationInProgress)
		return
	}
	book := v.state.Storybook()
	if len(book.Pages) == 0 {
		abortWithError(c, v.logger, v.locale, domain.ErrNoStory)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	progress, errCh := v.videoCreator.CreateVideo(ctx, inbound.VideoParams{Title: book.Title, Page: book.Pages[0]})
	stream := middleware.Stream(c)
	for p := range progress {
		event := dto.VideoEventResponse{VideoProgress: p}
		name := "video_status"
		if p.Stage == domain.VideoReady {
			name = "video_ready"
			event.DownloadURL = "/video/download?uri=" + url.QueryEscape(p.URI)
			v.viewer.ShowCover()
		}
		stream.Event(name, event)
	}

	err := <-errCh
	if err == nil {
		return
	}
	message := dto.ErrorResponse{Error: domain.UserMessage(err, v.locale)}
	if domain.IsEntityNotFound(err) || errors.Is(err, domain.ErrVideoAuthorizationRequired) {
		v.logger.WarnWithFields("video generation needs reauthorization", map[string]interface{}{"error": err.Error()})
		stream.Event("reauthorize", message)
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	v.logger.Error(err, "video generation failed")
	stream.Event("error", message)
}

func (v *videoController) DownloadVideo(c *gin.Context) {
	data, contentType, err := v.videoCreator.DownloadVideo(c.Request.Context(), c.Query("uri"))
	if err != nil {
		abortWithError(c, v.logger, v.locale, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="storybook.mp4"`)
	c.Data(http.StatusOK, contentType, data)
}

func (v *videoController) ConfirmAuthorization(c *gin.Context) {
	v.videoCreator.ConfirmAuthorization()
	c.Status(http.StatusNoContent)
}

func (v *videoController) RegisterRoutes(g *gin.Engine, stream gin.HandlerFunc) {
	g.POST("/video", stream, v.CreateVideo)
	g.GET("/video/download", v.DownloadVideo)
	g.POST("/video/authorization", v.ConfirmAuthorization)
}
