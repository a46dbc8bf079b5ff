package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/careercoach-backend/internal/platform/envutil"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
	"github.com/yungbote/careercoach-backend/internal/realtime/bus"
)

type BusMode string

const (
	BusModeRedis BusMode = "redis"
	BusModeLocal BusMode = "local"
	BusModeNone  BusMode = "none"
)

type BusConfigErrorCode string

const (
	BusConfigErrorInvalidMode      BusConfigErrorCode = "invalid_bus_mode"
	BusConfigErrorMissingRedisAddr BusConfigErrorCode = "missing_redis_addr"
	BusConfigErrorRedisUnreachable BusConfigErrorCode = "redis_unreachable"
)

type BusConfigError struct {
	Code  BusConfigErrorCode
	Mode  BusMode
	Cause error
}

func (e *BusConfigError) Error() string {
	if e == nil {
		return "invalid realtime bus config"
	}
	return fmt.Sprintf("invalid realtime bus config (code=%s mode=%q): %v", e.Code, e.Mode, e.Cause)
}

func (e *BusConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

type BusConfig struct {
	Mode       BusMode
	ModeSource string
	Redis      bus.RedisConfig
}

// resolveBusConfig reads REALTIME_BUS. Unset means redis when REDIS_ADDR is present
// and the in-process bus otherwise.
func resolveBusConfig(log *logger.Logger) (BusConfig, error) {
	redisCfg := bus.RedisConfig{
		Addr:    envutil.String("REDIS_ADDR", "", log),
		Channel: envutil.String("REDIS_CHANNEL", "goals:sse", log),
	}
	raw := strings.ToLower(envutil.String("REALTIME_BUS", "", log))
	cfg := BusConfig{Mode: BusMode(raw), ModeSource: "env", Redis: redisCfg}
	if raw == "" {
		cfg.ModeSource = "redis_addr_default"
		cfg.Mode = BusModeLocal
		if redisCfg.Addr != "" {
			cfg.Mode = BusModeRedis
		}
	}
	switch cfg.Mode {
	case BusModeRedis:
		if redisCfg.Addr == "" {
			return BusConfig{}, &BusConfigError{
				Code:  BusConfigErrorMissingRedisAddr,
				Mode:  cfg.Mode,
				Cause: fmt.Errorf("REDIS_ADDR is required for the redis bus"),
			}
		}
	case BusModeLocal, BusModeNone:
	default:
		return BusConfig{}, &BusConfigError{
			Code:  BusConfigErrorInvalidMode,
			Mode:  cfg.Mode,
			Cause: fmt.Errorf("unsupported REALTIME_BUS %q", raw),
		}
	}
	return cfg, nil
}

func newBus(log *logger.Logger, cfg BusConfig) (bus.Bus, error) {
	switch cfg.Mode {
	case BusModeRedis:
		b, err := bus.NewRedisBus(log, cfg.Redis)
		if err != nil {
			return nil, &BusConfigError{Code: BusConfigErrorRedisUnreachable, Mode: cfg.Mode, Cause: err}
		}
		return b, nil
	case BusModeNone:
		return bus.NewNopBus(), nil
	default:
		return bus.NewLocalBus(), nil
	}
}
