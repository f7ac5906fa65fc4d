package controllers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"storybook-generator/application/ports/inbound"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
	"storybook-generator/infrastructure/gin_interface/dto"
	"storybook-generator/middleware"
	"strings"
	"unicode/utf8"
)

const (
	maxImageUpload  = 10 << 20
	maxScriptUpload = 1 << 20
)

type StoryController interface {
	Generate(c *gin.Context)
	GetStory(c *gin.Context)
	GetStoryText(c *gin.Context)
	Export(c *gin.Context)
	NarrateCover(c *gin.Context)
	GetPageImage(c *gin.Context)
	GetPageAudio(c *gin.Context)
	RegenerateImage(c *gin.Context)
	RegenerateAudio(c *gin.Context)
	RegisterRoutes(g *gin.Engine, stream gin.HandlerFunc)
}

type storyController struct {
	logger       outbound.LoggerPort
	orchestrator inbound.StoryPipelineOrchestrator
	state        inbound.StorybookStatePort
	regenerator  inbound.PageRegeneratorPort
	exporter     inbound.StorybookExporterPort
	locale       string
}

func NewStoryController(logger outbound.LoggerPort, orchestrator inbound.StoryPipelineOrchestrator,
	state inbound.StorybookStatePort, regenerator inbound.PageRegeneratorPort, exporter inbound.StorybookExporterPort,
	locale string) StoryController {
	return &storyController{
		logger:       logger,
		orchestrator: orchestrator,
		state:        state,
		regenerator:  regenerator,
		exporter:     exporter,
		locale:       locale,
	}
}

func (s *storyController) Generate(c *gin.Context) {
	params, err := s.bindGenerateRequest(c)
	if err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events, errCh := s.orchestrator.StartPipeline(ctx, params)
	first, ok := <-events
	if !ok {
		if err := <-errCh; err != nil {
			abortWithError(c, s.logger, s.locale, err)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	stream := middleware.Stream(c)
	stream.Event(string(first.Type), dto.NewPipelineEventResponse(first))
	for event := range events {
		stream.Event(string(event.Type), dto.NewPipelineEventResponse(event))
	}
	if err := <-errCh; err != nil {
		s.logger.WarnWithFields("generation stream ended with an error", map[string]interface{}{"error": err.Error()})
	}
}

func (s *storyController) bindGenerateRequest(c *gin.Context) (inbound.StartPipelineParams, error) {
	var req dto.GenerateStoryRequest
	var image *domain.UploadedImage

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			return inbound.StartPipelineParams{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		uploaded, err := formImage(c)
		if err != nil {
			return inbound.StartPipelineParams{}, err
		}
		image = uploaded

		script, err := formScript(c)
		if err != nil {
			return inbound.StartPipelineParams{}, err
		}
		if script != "" {
			// An uploaded script is the plot; a typed prompt is kept as a preface.
			req.Prompt = strings.TrimSpace(strings.TrimSpace(req.Prompt) + "\n\n" + script)
			req.Mode = string(domain.PlotMode)
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			return inbound.StartPipelineParams{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		if req.Image != nil {
			if !strings.HasPrefix(req.Image.MimeType, "image/") {
				return inbound.StartPipelineParams{}, fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidRequest, req.Image.MimeType)
			}
			if _, err := base64.StdEncoding.DecodeString(req.Image.Base64); err != nil {
				return inbound.StartPipelineParams{}, fmt.Errorf("%w: image is not base64", domain.ErrInvalidRequest)
			}
			image = &domain.UploadedImage{Base64: req.Image.Base64, MimeType: req.Image.MimeType}
		}
	}

	voice, err := domain.ParseVoice(req.Voice)
	if err != nil {
		return inbound.StartPipelineParams{}, err
	}

	return inbound.StartPipelineParams{
		Mode:           domain.GenerationMode(strings.ToLower(strings.TrimSpace(req.Mode))),
		Prompt:         req.Prompt,
		NumPages:       req.NumPages,
		CharacterImage: image,
		Voice:          voice,
	}, nil
}

func formImage(c *gin.Context) (*domain.UploadedImage, error) {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidRequest, mimeType)
	}
	data, err := readFormFile(header, maxImageUpload)
	if err != nil {
		return nil, err
	}
	return domain.NewUploadedImage(data, mimeType), nil
}

// formScript reads the optional plain-text script. Other document formats are rejected.
func formScript(c *gin.Context) (string, error) {
	header, err := c.FormFile("script")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	mimeType := header.Header.Get("Content-Type")
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !strings.HasPrefix(mimeType, "text/plain") && ext != ".txt" && ext != ".md" {
		return "", fmt.Errorf("%w: only plain text scripts are supported", domain.ErrInvalidRequest)
	}
	data, err := readFormFile(header, maxScriptUpload)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: script is not utf-8 text", domain.ErrInvalidRequest)
	}
	return strings.TrimSpace(string(data)), nil
}

func readFormFile(header *multipart.FileHeader, limit int64) ([]byte, error) {
	if header.Size > limit {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", domain.ErrInvalidRequest, header.Filename, limit)
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, limit))
}

func (s *storyController) GetStory(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewStoryResponse(s.state.Storybook(), s.state.Status()))
}

func (s *storyController) GetStoryText(c *gin.Context) {
	text, err := s.exporter.CopyAllText()
	if err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}
	c.String(http.StatusOK, text)
}

func (s *storyController) Export(c *gin.Context) {
	res, err := s.exporter.ExportStorybook(c.Request.Context())
	if err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *storyController) NarrateCover(c *gin.Context) {
	voice, err := bindVoice(c)
	if err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}
	if err := s.regenerator.NarrateCover(c.Request.Context(), voice); err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *storyController) GetPageImage(c *gin.Context) {
	pageNumber, err := pageParam(c)
	if err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}
	image, err := s.exporter.PageImage(pageNumber)
	if err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}
	c.Data(http.StatusOK, image.MimeType, image.Data)
}

func (s *storyController) GetPageAudio(c *gin.Context) {
	pageNumber, err := pageParam(c)
	if err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}
	data, err := s.exporter.PageAudioWAV(pageNumber)
	if err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}
	c.Data(http.StatusOK, "audio/wav", data)
}

func (s *storyController) RegenerateImage(c *gin.Context) {
	pageNumber, err := pageParam(c)
	if err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}
	page, err := s.regenerator.RegenerateImage(c.Request.Context(), pageNumber)
	if err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

func (s *storyController) RegenerateAudio(c *gin.Context) {
	pageNumber, err := pageParam(c)
	if err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}
	voice, err := bindVoice(c)
	if err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}
	page, err := s.regenerator.RegenerateAudio(c.Request.Context(), pageNumber, voice)
	if err != nil {
		abortWithError(c, s.logger, s.locale, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// bindVoice accepts an empty body as the default voice.
func bindVoice(c *gin.Context) (domain.Voice, error) {
	var req dto.VoiceRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
	}
	return domain.ParseVoice(req.Voice)
}

func (s *storyController) RegisterRoutes(g *gin.Engine, stream gin.HandlerFunc) {
	g.POST("/generate", stream, s.Generate)

	story := g.Group("/story")
	story.GET("", s.GetStory)
	story.GET("/text", s.GetStoryText)
	story.POST("/export", s.Export)
	story.POST("/cover/narration", s.NarrateCover)

	pages := g.Group("/pages/:page")
	pages.GET("/image", s.GetPageImage)
	pages.GET("/audio", s.GetPageAudio)
	pages.POST("/image", s.RegenerateImage)
	pages.POST("/audio", s.RegenerateAudio)
}
