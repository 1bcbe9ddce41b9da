package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/deenkids/deenkids-backend/internal/http/handlers"
	httpMW "github.com/deenkids/deenkids-backend/internal/http/middleware"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthHandler     *httpH.AuthHandler
	AuthMiddleware  *httpMW.AuthMiddleware
	LearnerHandler  *httpH.LearnerHandler
	ProgressHandler *httpH.ProgressHandler
	ChatHandler     *httpH.ChatHandler
	SessionHandler  *httpH.SessionHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler

	ServiceName string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLog(cfg.Log))
	}
	r.Use(httpMW.CORS())
	name := cfg.ServiceName
	if name == "" {
		name = "deenkids-api"
	}
	r.Use(otelgin.Middleware(name))
	r.Use(httpMW.AttachTraceContext())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
			protected.POST("/heartbeat", cfg.AuthHandler.Heartbeat)
			protected.GET("/me", cfg.AuthHandler.GetMe)
		}

		if cfg.LearnerHandler != nil {
			protected.POST("/learners", cfg.LearnerHandler.Create)
			protected.GET("/learners", cfg.LearnerHandler.List)
			protected.GET("/learners/:id/dashboard", cfg.LearnerHandler.GetDashboard)
			protected.PUT("/learners/:id/daily-limit", cfg.LearnerHandler.UpdateDailyLimit)
			protected.POST("/learners/:id/activity", cfg.LearnerHandler.LogActivity)
		}

		if cfg.ProgressHandler != nil {
			protected.POST("/learners/:id/progress", cfg.ProgressHandler.Record)
			protected.GET("/learners/:id/progress", cfg.ProgressHandler.GetLedger)
		}

		if cfg.ChatHandler != nil {
			protected.POST("/chat/allow", cfg.ChatHandler.Allow)
		}

		if cfg.SessionHandler != nil {
			protected.POST("/sessions/start", cfg.SessionHandler.StartOrReuse)
			protected.GET("/sessions/:id", cfg.SessionHandler.Get)
			protected.POST("/sessions/:id/start", cfg.SessionHandler.Start)
			protected.POST("/sessions/:id/join", cfg.SessionHandler.Join)
			protected.POST("/sessions/:id/position", cfg.SessionHandler.AdvancePosition)
			protected.POST("/sessions/:id/end", cfg.SessionHandler.End)
			protected.POST("/sessions/:id/access-requests", cfg.SessionHandler.RequestAccess)
			protected.POST("/access-requests/:id/resolve", cfg.SessionHandler.ResolveAccess)
		}

		if cfg.RealtimeHandler != nil {
			protected.GET("/sessions/:id/stream", cfg.RealtimeHandler.Stream)
		}
	}

	return r
}
