package app

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/yungbote/careercoach-backend/internal/data/db"
	"github.com/yungbote/careercoach-backend/internal/observability"
	"github.com/yungbote/careercoach-backend/internal/platform/envutil"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
	"github.com/yungbote/careercoach-backend/internal/services"
)

const defaultWeekTimezone = "America/New_York"

type Config struct {
	Port string

	DB db.Config

	// WeekTimezone names the zone weekly goals roll over in; WeekLocation is its loaded form.
	WeekTimezone string
	WeekLocation *time.Location

	TriggersPath string
	Dispatch     services.GoalDispatcherConfig
	Bus          BusConfig

	JWTSecretKey   string
	AllowedOrigins []string

	Otel observability.OtelConfig
}

func LoadConfig(log *logger.Logger) (Config, error) {
	busCfg, err := resolveBusConfig(log)
	if err != nil {
		return Config{}, err
	}
	tz := envutil.String("GOALS_WEEK_TIMEZONE", defaultWeekTimezone, log)
	return Config{
		Port: envutil.String("PORT", "8080", log),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres, log),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432", log),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", log),
			PostgresName:     envutil.String("POSTGRES_NAME", "careercoach", log),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable", log),
			SQLitePath:       envutil.String("SQLITE_PATH", "", log),
		},
		WeekTimezone: tz,
		WeekLocation: loadWeekLocation(tz, log),
		TriggersPath: envutil.String("GOAL_TRIGGERS_YAML", "", log),
		Dispatch: services.GoalDispatcherConfig{
			Concurrency: envutil.Int("GOAL_DISPATCH_CONCURRENCY", services.DefaultDispatchConcurrency, log),
			Timeout:     envutil.DurationMS("GOAL_DISPATCH_TIMEOUT_MS", services.DefaultDispatchTimeout, log),
		},
		Bus:            busCfg,
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "", log),
		AllowedOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "", log)),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "careercoach-goals", log),
			Environment: envutil.String("APP_ENV", "development", log),
			Version:     envutil.String("APP_VERSION", "", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1, 0, 1, log),
		},
	}, nil
}

// loadWeekLocation falls back to UTC so a bad zone name never blocks startup.
func loadWeekLocation(name string, log *logger.Logger) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if log != nil {
			log.Warn("Unknown week timezone, using UTC", "timezone", name, "error", err)
		}
		return time.UTC
	}
	return loc
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
