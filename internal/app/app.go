package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/demodev-lab/demo-funnel-sub000/internal/config"
	"github.com/demodev-lab/demo-funnel-sub000/internal/controller"
	"github.com/demodev-lab/demo-funnel-sub000/internal/repository"
	"github.com/demodev-lab/demo-funnel-sub000/internal/service"
	"github.com/demodev-lab/demo-funnel-sub000/pkg/database"
	"github.com/demodev-lab/demo-funnel-sub000/pkg/logger"
	"github.com/demodev-lab/demo-funnel-sub000/pkg/monitoring"
	"github.com/demodev-lab/demo-funnel-sub000/pkg/security"
	"github.com/demodev-lab/demo-funnel-sub000/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	clock      *repository.ClockRepository
	user       *repository.UserRepository
	challenge  *repository.ChallengeRepository
	lecture    *repository.LectureRepository
	slot       *repository.ScheduleSlotRepository
	enrollment *repository.EnrollmentRepository
	assignment *repository.AssignmentRepository
	submission *repository.SubmissionRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	clock      *service.ClockService
	schedule   *service.ScheduleService
	challenge  *service.ChallengeService
	lecture    *service.LectureService
	submission *service.SubmissionService
	completion *service.CompletionService
	refund     *service.RefundService
	rates      *service.RateCache
}

type controllers struct {
	health     *controller.HealthController
	auth       *controller.AuthController
	challenge  *controller.ChallengeController
	lecture    *controller.LectureController
	submission *controller.SubmissionController
	completion *controller.CompletionController
	refund     *controller.RefundController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		clock:      repository.NewClockRepository(db),
		user:       repository.NewUserRepository(db),
		challenge:  repository.NewChallengeRepository(db),
		lecture:    repository.NewLectureRepository(db),
		slot:       repository.NewScheduleSlotRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		assignment: repository.NewAssignmentRepository(db),
		submission: repository.NewSubmissionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		logger.Log.Fatal("Invalid schedule timezone", zap.String("timezone", cfg.Schedule.Timezone), zap.Error(err))
	}

	s := &services{}
	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.clock = service.NewClockService(repos.clock)
	s.rates = service.NewRateCache(rdb)
	s.schedule = service.NewScheduleService(repos.challenge, repos.lecture, repos.slot, loc, logger.Log)
	s.challenge = service.NewChallengeService(repos.challenge, repos.enrollment, repos.user, repos.slot, repos.assignment, s.schedule, s.clock, logger.Log)
	s.lecture = service.NewLectureService(repos.lecture, repos.assignment, logger.Log)
	s.submission = service.NewSubmissionService(repos.slot, repos.submission, s.clock, s.storage, s.rates, logger.Log)
	s.completion = service.NewCompletionService(repos.slot, repos.enrollment, repos.submission, s.rates, logger.Log)
	s.refund = service.NewRefundService(repos.slot, repos.enrollment, repos.submission, logger.Log)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		health:     controller.NewHealthController(db),
		auth:       controller.NewAuthController(s.auth),
		challenge:  controller.NewChallengeController(s.challenge, s.schedule),
		lecture:    controller.NewLectureController(s.lecture),
		submission: controller.NewSubmissionController(s.submission),
		completion: controller.NewCompletionController(s.completion),
		refund:     controller.NewRefundController(s.refund),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Release mode only migrates when explicitly asked; debug boots
	// always bring the schema up to date.
	if cfg.ForceMigrate || cfg.MigrateOnly || cfg.Server.Mode != "release" {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}

	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("demo-funnel", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
