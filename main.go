package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"back/config"
	"back/controllers"
	"back/metrics"
	"back/routes"
	"back/services"
	"back/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg)

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()
	if err := st.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("failed to init schema")
	}

	llm := services.NewLLMClient(cfg)
	m := metrics.New(prometheus.DefaultRegisterer)

	router := routes.SetupRouter(routes.Deps{
		Chat:          controllers.NewChatController(llm, services.NewContextBuilder(st, cfg.ChatHistoryLimit), m, cfg.LLMStream),
		Conversations: controllers.NewConversationController(st, services.NewSyncService(st)),
		Extract:       controllers.NewExtractController(services.NewExtractService(st, llm)),
		Files:         controllers.NewFileController(),
		Search:        controllers.NewSearchController(services.NewSearchService(cfg)),
		Metrics:       m,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Bool("stream", cfg.LLMStream).Msg("server starting")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "backend").Logger()
	if cfg.Debug {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	log.Logger = logger
}
