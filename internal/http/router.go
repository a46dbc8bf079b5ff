package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/careercoach-backend/internal/http/handlers"
	httpMW "github.com/yungbote/careercoach-backend/internal/http/middleware"
	"github.com/yungbote/careercoach-backend/internal/observability"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

const serviceName = "careercoach-backend"

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string

	AuthMiddleware    *httpMW.AuthMiddleware
	GoalsHandler      *httpH.GoalsHandler
	OnboardingHandler *httpH.OnboardingHandler
	RealtimeHandler   *httpH.RealtimeHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	protected := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Goals
		if cfg.GoalsHandler != nil {
			protected.GET("/goals/baseline", cfg.GoalsHandler.GetBaseline)
			protected.PATCH("/goals/baseline/:actionId", cfg.GoalsHandler.ToggleBaselineAction)
			protected.GET("/goals/weekly", cfg.GoalsHandler.GetWeekly)
			protected.PATCH("/goals/weekly/:goalId", cfg.GoalsHandler.SetWeeklyGoalEnabled)
			protected.POST("/goals/triggers", cfg.GoalsHandler.FireTrigger)
			protected.GET("/goals/events", cfg.GoalsHandler.ListEvents)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/goals/stream", cfg.RealtimeHandler.Stream)
		}

		// Onboarding
		if cfg.OnboardingHandler != nil {
			protected.POST("/onboarding/complete", cfg.OnboardingHandler.Complete)
		}
	}

	return r
}
