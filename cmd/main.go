package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/application/services"
	"storybook-generator/config"
	"storybook-generator/infrastructure/adapters"
	"storybook-generator/infrastructure/gin_interface/controllers"
	"storybook-generator/middleware"
	mockgenerator "storybook-generator/mock"
	"syscall"
	"time"
)

type providers struct {
	title      outbound.TitleGeneratorPort
	script     outbound.StoryScriptGeneratorPort
	image      outbound.ImageGeneratorPort
	audio      outbound.AudioGeneratorPort
	video      outbound.VideoGeneratorPort
	downloader outbound.VideoDownloaderPort
}

func main() {
	_ = godotenv.Load()

	serverConfig, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get server config")
	}

	videoConfig, err := config.GetVideoConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get video config")
	}

	s3Config, err := config.GetS3Config()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get s3 config")
	}

	zeroLogger := adapters.NewZerologWrapper(serverConfig.LogLevel)

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	workerPool, err := ants.NewPool(serverConfig.WorkerPoolSize, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var p providers
	if serverConfig.MockProvider {
		var storyFiles fs.FS
		storyFile := serverConfig.MockStoryFile
		if storyFile != "" {
			storyFiles = os.DirFS(filepath.Dir(storyFile))
			storyFile = filepath.Base(storyFile)
		}
		generators, err := mockgenerator.Init(storyFiles, storyFile, zeroLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load mock story")
		}
		p = providers{
			title:      generators.TitleGenerator(),
			script:     generators.ScriptGenerator(),
			image:      generators.ImageGenerator(),
			audio:      generators.AudioGenerator(),
			video:      generators.VideoGenerator(),
			downloader: generators.VideoDownloader(),
		}
	} else {
		geminiConfig, err := config.GetGeminiConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get gemini config")
		}
		geminiClient, err := adapters.NewGeminiClient(ctx, geminiConfig, zeroLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create gemini client")
		}
		p = providers{
			title:      adapters.NewTitleGenerator(geminiClient, geminiConfig, zeroLogger),
			script:     adapters.NewStoryScriptGenerator(geminiClient, geminiConfig, zeroLogger),
			image:      adapters.NewImageGenerator(geminiClient, geminiConfig, zeroLogger),
			audio:      adapters.NewAudioGenerator(geminiClient, geminiConfig, zeroLogger),
			video:      adapters.NewVideoGenerator(geminiClient, geminiConfig, zeroLogger),
			downloader: adapters.NewContentFetcher(zeroLogger),
		}
	}

	var storyExport outbound.StoryExportPort
	if s3Config != nil {
		sess := session.Must(session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
			Config:            aws.Config{Region: aws.String(s3Config.Region)},
		}))
		storyExport = adapters.NewS3StoryExporter(s3.New(sess), s3Config, zeroLogger)
	} else {
		zeroLogger.Info("BUCKET_NAME is not set, storybook export is disabled")
	}

	authorizer := adapters.NewHostAuthorizer(videoConfig.Authorized, zeroLogger)
	player := adapters.NewPCMAudioPlayer(zeroLogger)
	wavEncoder := adapters.NewWAVEncoder(zeroLogger)

	state := services.NewStorybookState()
	viewer := services.NewStorybookViewer(zeroLogger, state, player, workerPool)
	defer func() {
		if err := viewer.Close(); err != nil {
			zeroLogger.Error(err, "Failed to close viewer")
		}
	}()

	orchestrator := services.NewStoryPipelineOrchestrator(services.PipelineDependencies{
		Logger:          zeroLogger,
		TitleGenerator:  p.title,
		ScriptGenerator: p.script,
		ImageGenerator:  p.image,
		AudioGenerator:  p.audio,
		State:           state,
		Viewer:          viewer,
		WorkerPool:      workerPool,
		Locale:          serverConfig.Locale,
	})
	regenerator := services.NewPageRegenerator(zeroLogger, p.image, p.audio, state, viewer)
	exporter := services.NewStorybookExporter(zeroLogger, state, wavEncoder, storyExport)
	videoCreator := services.NewVideoCreator(zeroLogger, p.video, p.downloader, authorizer, workerPool,
		videoConfig.PollInterval, serverConfig.Locale)

	storyController := controllers.NewStoryController(zeroLogger, orchestrator, state, regenerator, exporter, serverConfig.Locale)
	viewerController := controllers.NewViewerController(zeroLogger, viewer, state, serverConfig.Locale)
	videoController := controllers.NewVideoController(zeroLogger, videoCreator, state, viewer, serverConfig.Locale)

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	err = router.SetTrustedProxies(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	sse := middleware.SSEMiddleware(workerPool, zeroLogger, middleware.DefaultHeartbeatInterval)
	storyController.RegisterRoutes(router, sse)
	viewerController.RegisterRoutes(router)
	videoController.RegisterRoutes(router, sse)

	server := &http.Server{
		Addr:    ":" + serverConfig.Port,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zeroLogger.Error(err, "Failed to shut down server")
		}
	}()

	zeroLogger.InfoWithFields("Starting server", map[string]interface{}{
		"port":  serverConfig.Port,
		"mock":  serverConfig.MockProvider,
		"video": videoConfig.Authorized,
	})
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}
