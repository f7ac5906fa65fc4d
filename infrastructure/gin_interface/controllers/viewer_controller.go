package controllers

import (
	"github.com/gin-gonic/gin"
	"net/http"
	"storybook-generator/application/ports/inbound"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
	"storybook-generator/infrastructure/gin_interface/dto"
)

type ViewerController interface {
	GetSnapshot(c *gin.Context)
	Next(c *gin.Context)
	Previous(c *gin.Context)
	ShowCover(c *gin.Context)
	TogglePlayback(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type viewerController struct {
	logger outbound.LoggerPort
	viewer inbound.StorybookViewerPort
	state  inbound.StorybookStatePort
	locale string
}

func NewViewerController(logger outbound.LoggerPort, viewer inbound.StorybookViewerPort, state inbound.StorybookStatePort,
	locale string) ViewerController {
	return &viewerController{
		logger: logger,
		viewer: viewer,
		state:  state,
		locale: locale,
	}
}

func (v *viewerController) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, v.render(v.viewer.Snapshot()))
}

func (v *viewerController) Next(c *gin.Context) {
	c.JSON(http.StatusOK, v.render(v.viewer.Next()))
}

func (v *viewerController) Previous(c *gin.Context) {
	c.JSON(http.StatusOK, v.render(v.viewer.Previous()))
}

func (v *viewerController) ShowCover(c *gin.Context) {
	c.JSON(http.StatusOK, v.render(v.viewer.ShowCover()))
}

func (v *viewerController) TogglePlayback(c *gin.Context) {
	snapshot, err := v.viewer.TogglePlayback()
	if err != nil {
		abortWithError(c, v.logger, v.locale, err)
		return
	}
	c.JSON(http.StatusOK, v.render(snapshot))
}

func (v *viewerController) render(snapshot domain.ViewerSnapshot) dto.ViewerResponse {
	book := v.state.Storybook()
	res := dto.ViewerResponse{ViewerSnapshot: snapshot, Title: book.Title}
	if snapshot.View.Kind == domain.CoverView {
		return res
	}
	if page, ok := book.FindPage(snapshot.PageNumber); ok {
		rendered := dto.NewPageResponse(page)
		res.Page = &rendered
	}
	return res
}

func (v *viewerController) RegisterRoutes(g *gin.Engine) {
	viewer := g.Group("/viewer")
	viewer.GET("", v.GetSnapshot)
	viewer.POST("/next", v.Next)
	viewer.POST("/previous", v.Previous)
	viewer.POST("/cover", v.ShowCover)
	viewer.POST("/playback", v.TogglePlayback)
}
