package main

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/config"
	"civicpulse/internal/db"
	"civicpulse/internal/handlers"
	"civicpulse/internal/logger"
	"civicpulse/internal/middleware"
	"civicpulse/internal/router"
	"civicpulse/internal/services"
	"civicpulse/internal/snapshot"
	"civicpulse/internal/store"
	"civicpulse/internal/thread"
	"civicpulse/internal/utils"
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load config (.env is optional)
	cfg, err := config.Load()
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, ServiceName: "civicpulse"})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	loc, _ := cfg.Location()
	clock := civictime.NewClock(loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	var s store.Store
	switch cfg.StoreDriver {
	case config.DriverMemory:
		mem := store.NewMemoryStore()
		db.SeedDemo(ctx, mem, clock.Now())
		s = mem
		log.Warn().Str("constituency_id", db.DemoConstituencyID).Msg("using in-memory store with demo data")
	default:
		s = store.NewGormStore(db.Init(cfg.DatabaseURL))
	}

	// 引擎
	composer := snapshot.NewComposer(s, clock, snapshot.Options{
		FetchTimeout:    cfg.FetchTimeout,
		Concurrency:     cfg.FetchConcurrency,
		TermHorizonDays: cfg.TermHorizonDays,
	})
	threads := thread.NewService(s, clock, cfg.FetchConcurrency)

	// 服务
	model, err := services.NewLLM(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init LLM client")
	}
	if model == nil {
		log.Info().Msg("LLM_TOKEN not set, AI replies and briefs disabled")
	}
	audit := services.NewAuditor(s, clock)
	aliases := services.NewAliasService(s, clock)
	comments := services.NewCommentService(s, clock, aliases, audit, model, services.AIOptions{
		SystemUserID: cfg.AISystemUserID,
		Timeout:      cfg.AITimeout,
	})
	briefs := services.NewBriefService(s, composer, audit, model, cfg.AITimeout)

	var queue *services.BriefQueue
	if briefs.Enabled() {
		queue = services.NewBriefQueue(briefs)
		queue.Start(ctx)
		queue.StartDailyRefresh(ctx, clock, cfg.BriefRefreshHour)
	}

	snapshotCache, err := utils.NewCache[*snapshot.Snapshot](1024)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init snapshot cache")
	}

	// HTTP
	sessionStore, err := middleware.NewSessionStore(cfg.SessionSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init session store")
	}
	gin.SetMode(gin.ReleaseMode)
	r := router.New(middleware.Sessions(sessionStore))
	router.RegisterRoutes(r, router.Handlers{
		Snapshot: handlers.NewSnapshotHandler(composer, snapshotCache, cfg.SnapshotCacheTTL, cfg.TermHorizonDays),
		Comment:  handlers.NewCommentHandler(threads, comments),
		Vote:     handlers.NewVoteHandler(s, audit, snapshotCache),
		Brief:    handlers.NewBriefHandler(briefs, queue),
	})

	log.Info().Str("port", cfg.Port).Str("timezone", loc.String()).Msg("civicpulse server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
