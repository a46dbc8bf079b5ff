package app

import (
	"context"

	apphttp "github.com/yungbote/careercoach-backend/internal/http"
	httpH "github.com/yungbote/careercoach-backend/internal/http/handlers"
	httpMW "github.com/yungbote/careercoach-backend/internal/http/middleware"
	"github.com/yungbote/careercoach-backend/internal/observability"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
	"github.com/yungbote/careercoach-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Goals      *httpH.GoalsHandler
	Onboarding *httpH.OnboardingHandler
	Realtime   *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, goals Goals, hub *realtime.SSEHub, ping func(context.Context) error) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(ping),
		Goals:      httpH.NewGoalsHandler(log, goals.Registry, goals.Baseline, goals.Weekly, goals.Events, goals.Dispatcher),
		Onboarding: httpH.NewOnboardingHandler(goals.Onboarding),
		Realtime:   httpH.NewRealtimeHandler(log, hub),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY is empty; every authenticated request will be rejected")
	}
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func routerConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) apphttp.RouterConfig {
	return apphttp.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		AllowedOrigins:    cfg.AllowedOrigins,
		AuthMiddleware:    middleware.Auth,
		GoalsHandler:      handlers.Goals,
		OnboardingHandler: handlers.Onboarding,
		RealtimeHandler:   handlers.Realtime,
		HealthHandler:     handlers.Health,
	}
}
