package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"

	"github.com/yungbote/careercoach-backend/internal/data/db"
	"github.com/yungbote/careercoach-backend/internal/domain/goals/triggers"
	apphttp "github.com/yungbote/careercoach-backend/internal/http"
	"github.com/yungbote/careercoach-backend/internal/observability"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
	"github.com/yungbote/careercoach-backend/internal/realtime"
	"github.com/yungbote/careercoach-backend/internal/realtime/bus"
)

type App struct {
	*Core
	SSEHub *realtime.SSEHub
	Server *apphttp.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// Core is everything below the HTTP surface. The CLI uses it directly.
type Core struct {
	Log     *logger.Logger
	DB      *db.Service
	Cfg     Config
	Metrics *observability.Metrics
	Bus     bus.Bus
	Goals   Goals
}

func NewCore(log *logger.Logger) (*Core, error) {
	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		return nil, err
	}

	reg, err := triggers.Load(cfg.TriggersPath)
	if err != nil {
		return nil, fmt.Errorf("load trigger registry: %w", err)
	}
	baselineN, weeklyN := reg.Size()
	log.Info("Trigger registry loaded", "baseline_triggers", baselineN, "weekly_triggers", weeklyN, "override", cfg.TriggersPath)

	dbs, err := db.New(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := dbs.AutoMigrateAll(); err != nil {
		_ = dbs.Close()
		return nil, fmt.Errorf("db automigrate: %w", err)
	}

	metrics, err := observability.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		_ = dbs.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	b, err := newBus(log, cfg.Bus)
	if err != nil {
		_ = dbs.Close()
		return nil, err
	}
	log.Info("Realtime bus ready", "mode", cfg.Bus.Mode, "mode_source", cfg.Bus.ModeSource)
	b = instrumentBus(b, metrics)

	goals := NewGoals(GoalsDeps{
		DB:       dbs.DB(),
		Log:      log,
		Metrics:  metrics,
		Bus:      b,
		Registry: reg,
		Location: cfg.WeekLocation,
		Dispatch: cfg.Dispatch,
	})
	log.Info("Goal engine ready", "week_timezone", cfg.WeekLocation.String())

	return &Core{Log: log, DB: dbs, Cfg: cfg, Metrics: metrics, Bus: b, Goals: goals}, nil
}

// Close drains the dispatcher, then releases the bus and the database.
func (c *Core) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Goals.Dispatcher != nil {
		if err := c.Goals.Dispatcher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain dispatcher: %w", err))
		}
	}
	if c.Bus != nil {
		if err := c.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close bus: %w", err))
		}
	}
	if err := c.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close db: %w", err))
	}
	return errors.Join(errs...)
}

func New(ctx context.Context) (*App, error) {
	log, err := NewLogger()
	if err != nil {
		return nil, err
	}

	core, err := NewCore(log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	otelShutdown := observability.InitOTel(ctx, log, core.Cfg.Otel)

	hub := realtime.NewSSEHub(log)
	sqlDB, err := core.DB.DB().DB()
	if err != nil {
		_ = core.Close(ctx)
		log.Sync()
		return nil, fmt.Errorf("sql handle: %w", err)
	}

	handlers := wireHandlers(log, core.Goals, hub, sqlDB.PingContext)
	middleware := wireMiddleware(log, core.Cfg)
	server := apphttp.NewServer(":"+core.Cfg.Port, routerConfig(log, core.Cfg, core.Metrics, handlers, middleware))
	// Open SSE streams would otherwise hold Shutdown until its context expires.
	server.RegisterOnShutdown(hub.CloseAll)

	return &App{
		Core:         core,
		SSEHub:       hub,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Start forwards bus messages into the local SSE hub.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	if err := a.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		return fmt.Errorf("start bus forwarder: %w", err)
	}
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Core == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "port", a.Cfg.Port)
	return a.Server.Run()
}

// Close stops the HTTP server first so no new triggers arrive while the dispatcher drains.
func (a *App) Close(ctx context.Context) error {
	if a == nil || a.Core == nil {
		return nil
	}
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http: %w", err))
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if err := a.Core.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown otel: %w", err))
		}
	}
	a.Log.Sync()
	return errors.Join(errs...)
}
