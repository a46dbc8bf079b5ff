package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/yungbote/careercoach-backend/internal/platform/logger"
	"github.com/yungbote/careercoach-backend/internal/realtime"
)

var (
	errNoCallback     = errors.New("onMsg callback required")
	errNotInitialized = errors.New("redis goal bus not initialized")
)

const (
	defaultRedisChannel    = "goals:sse"
	defaultDialTimeout     = 5 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30 * time.Second
)

// RedisConfig configures the cross-instance bus. Every instance publishes to and
// subscribes on the same pub/sub Channel.
type RedisConfig struct {
	Addr        string
	Channel     string
	DialTimeout time.Duration
	// BreakerFailures consecutive publish failures open the breaker for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

func (c RedisConfig) withDefaults() RedisConfig {
	c.Addr = strings.TrimSpace(c.Addr)
	if c.Channel = strings.TrimSpace(c.Channel); c.Channel == "" {
		c.Channel = defaultRedisChannel
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = defaultBreakerFailures
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = defaultBreakerCooldown
	}
	return c
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	breaker *gobreaker.CircuitBreaker
}

// NewRedisBus dials and pings Redis before returning.
func NewRedisBus(log *logger.Logger, cfg RedisConfig) (Bus, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	cfg = cfg.withDefaults()
	if cfg.Addr == "" {
		return nil, errors.New("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Addr, DialTimeout: cfg.DialTimeout})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return newRedisBus(log, rdb, cfg), nil
}

func newRedisBus(log *logger.Logger, rdb *goredis.Client, cfg RedisConfig) *redisBus {
	cfg = cfg.withDefaults()
	b := &redisBus{
		log:     log.With("service", "RedisGoalBus", "channel", cfg.Channel),
		rdb:     rdb,
		channel: cfg.Channel,
	}
	trip := cfg.BreakerFailures
	b.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "goal-bus-publish",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= trip },
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.log.Warn("Goal bus breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return b
}

// Publish fails fast with gobreaker.ErrOpenState while Redis is considered down.
func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return errNotInitialized
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Event, err)
	}
	_, err = b.breaker.Execute(func() (interface{}, error) {
		return nil, b.rdb.Publish(ctx, b.channel, payload).Err()
	})
	return err
}

// StartForwarder returns once the subscription is confirmed; delivery runs until
// ctx ends or the subscription channel closes.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	switch {
	case b == nil || b.rdb == nil:
		return errNotInitialized
	case onMsg == nil:
		return errNoCallback
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	go b.forward(ctx, sub, onMsg)
	return nil
}

func (b *redisBus) forward(ctx context.Context, sub *goredis.PubSub, onMsg func(realtime.SSEMessage)) {
	defer sub.Close()
	in := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok || m == nil {
				return
			}
			var msg realtime.SSEMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				b.log.Warn("Dropping undecodable goal bus payload", "error", err)
				continue
			}
			onMsg(msg)
		}
	}
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
