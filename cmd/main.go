package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/deenkids/deenkids-backend/internal/clients/redis"
	"github.com/deenkids/deenkids-backend/internal/data/db"
	"github.com/deenkids/deenkids-backend/internal/data/repos"
	httpServer "github.com/deenkids/deenkids-backend/internal/http"
	httpH "github.com/deenkids/deenkids-backend/internal/http/handlers"
	httpMW "github.com/deenkids/deenkids-backend/internal/http/middleware"
	"github.com/deenkids/deenkids-backend/internal/observability"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
	"github.com/deenkids/deenkids-backend/internal/realtime"
	"github.com/deenkids/deenkids-backend/internal/services"
	"github.com/deenkids/deenkids-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	chatDailyLimit := utils.GetEnvAsInt("CHAT_DAILY_LIMIT", 3, log)
	dailyLimitMinutes := utils.GetEnvAsInt("DAILY_LIMIT_MINUTES", 45, log)
	maxXPPerLesson := utils.GetEnvAsInt("XP_MAX_PER_LESSON", 150, log)
	ladderFile := utils.GetEnv("RANK_LADDER_FILE", "", log)

	// Tracing
	ctx := context.Background()
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "deenkids-api",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownOTel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(shutdownCtx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Rank ladder
	ladder, err := services.LoadLadderFile(ladderFile)
	if err != nil {
		log.Fatal("Rank ladder load failed", "error", err, "path", ladderFile)
	}

	// Repos
	log.Info("Setting up repos...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	userEventRepo := repos.NewUserEventRepo(thePG, log)
	learnerRepo := repos.NewLearnerRepo(thePG, log)
	lessonProgressRepo := repos.NewLessonProgressRepo(thePG, log)
	learnerStatsRepo := repos.NewLearnerStatsRepo(thePG, log)
	dailyActivityRepo := repos.NewDailyActivityRepo(thePG, log)
	liveSessionRepo := repos.NewLiveSessionRepo(thePG, log)
	attendanceRepo := repos.NewSessionAttendanceRepo(thePG, log)
	accessRequestRepo := repos.NewAccessRequestRepo(thePG, log)

	// Realtime
	hub := realtime.NewHub(log)
	var bus realtime.Publisher
	sessionBus, err := redis.NewSessionBus(log)
	if err != nil {
		log.Warn("Session bus unavailable, running single-replica", "error", err)
	} else {
		defer sessionBus.Close()
		if err := sessionBus.StartForwarder(ctx, hub.Broadcast); err != nil {
			log.Warn("Session bus forwarder failed to start", "error", err)
		}
		bus = sessionBus
	}

	// Services
	log.Info("Setting up services...")
	sink := services.NewEventSink(thePG, log, userEventRepo)
	sink.Start(ctx)
	defer sink.Close()

	statsService := services.NewStatsService(thePG, log, lessonProgressRepo, learnerStatsRepo, learnerRepo, ladder, maxXPPerLesson)
	quotaService := services.NewQuotaService(thePG, log, userRepo, learnerStatsRepo, dailyActivityRepo, sink, chatDailyLimit, dailyLimitMinutes)
	progressService := services.NewProgressService(thePG, log, lessonProgressRepo, dailyActivityRepo, statsService, sink)
	learnerService := services.NewLearnerService(thePG, log, learnerRepo, lessonProgressRepo, learnerStatsRepo, dailyActivityRepo, statsService, ladder, dailyLimitMinutes)
	sessionService := services.NewLiveSessionService(log, liveSessionRepo, attendanceRepo, accessRequestRepo, quotaService, sink, hub, bus)
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(log, userRepo)

	// Handlers
	log.Info("Setting up handlers...")
	authHandler := httpH.NewAuthHandler(authService, userService)
	learnerHandler := httpH.NewLearnerHandler(learnerService, quotaService)
	progressHandler := httpH.NewProgressHandler(progressService, learnerService)
	chatHandler := httpH.NewChatHandler(quotaService)
	sessionHandler := httpH.NewSessionHandler(sessionService, learnerService)
	realtimeHandler := httpH.NewRealtimeHandler(log, hub)
	healthHandler := httpH.NewHealthHandler(thePG)

	// Middleware
	authMiddleware := httpMW.NewAuthMiddleware(log, authService)

	// Router
	server := httpServer.NewServer(httpServer.RouterConfig{
		Log:             log,
		AuthHandler:     authHandler,
		AuthMiddleware:  authMiddleware,
		LearnerHandler:  learnerHandler,
		ProgressHandler: progressHandler,
		ChatHandler:     chatHandler,
		SessionHandler:  sessionHandler,
		RealtimeHandler: realtimeHandler,
		HealthHandler:   healthHandler,
		ServiceName:     "deenkids-api",
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := server.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
