package main

import (
	"context"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	internalhandler "github.com/campusforge/timetable-engine/internal/handler"
	internalmiddleware "github.com/campusforge/timetable-engine/internal/middleware"
	"github.com/campusforge/timetable-engine/internal/repository"
	"github.com/campusforge/timetable-engine/internal/service"
	"github.com/campusforge/timetable-engine/pkg/cache"
	"github.com/campusforge/timetable-engine/pkg/config"
	"github.com/campusforge/timetable-engine/pkg/database"
	"github.com/campusforge/timetable-engine/pkg/logger"
	"github.com/campusforge/timetable-engine/pkg/metrics"
	corsmiddleware "github.com/campusforge/timetable-engine/pkg/middleware/cors"
	reqidmiddleware "github.com/campusforge/timetable-engine/pkg/middleware/requestid"
	"github.com/campusforge/timetable-engine/pkg/runlock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise redis", "error", err)
	}
	defer redisClient.Close()

	collector := metrics.New()

	catalogueRepo := repository.NewCatalogueRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	slotRepo := repository.NewSlotRepository(db, timetableRepo)

	locker := runlock.New(redisClient, cfg.Scheduler.GenerationLockTTL)

	generator := service.NewGenerator(catalogueRepo, slotRepo, locker, collector, logr, cfg.Scheduler)

	asyncGenerator := service.NewAsyncGenerator(ctx, generator, logr, 2)
	defer asyncGenerator.Stop()

	metricsHandler := internalhandler.NewMetricsHandler(collector)
	timetableHandler := internalhandler.NewTimetableHandler(timetableRepo, slotRepo)
	generateHandler := internalhandler.NewGenerateHandler(generator, asyncGenerator)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(collector))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		timetables := api.Group("/timetables")
		timetables.POST("", timetableHandler.Create)
		timetables.GET("", timetableHandler.List)
		timetables.GET("/:id", timetableHandler.Get)
		timetables.DELETE("/:id", timetableHandler.Delete)
		timetables.POST("/:id/activate", timetableHandler.Activate)
		timetables.GET("/:id/slots", timetableHandler.Slots)

		timetables.POST("/:id/generate", generateHandler.Generate)
		timetables.POST("/:id/generate-async", generateHandler.GenerateAsync)
		timetables.DELETE("/:id/generate", generateHandler.Cancel)
	}

	addr := ":" + strconv.Itoa(cfg.Port)
	logr.Sugar().Infow("scheduler-api starting",
		"addr", addr, "env", cfg.Env,
		"grid_start_hour", cfg.Grid.StartHour, "grid_slots_per_day", cfg.Grid.SlotCount, "grid_days", cfg.Grid.DayCount,
		"level_order", cfg.Scheduler.LevelOrder, "level_budget", cfg.Scheduler.LevelBudget,
	)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server exited", "error", err)
	}
}
