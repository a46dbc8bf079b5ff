// Package logger wraps a zap sugared logger with key/value helpers that redact
// credentials and hash user ids before they reach log storage.
package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a logger for mode: "prod" logs JSON at info, "test" logs console
// at warn, anything else logs console at debug. LOG_LEVEL overrides the level.
func New(mode string) (*Logger, error) {
	cfg, level := zap.NewDevelopmentConfig(), zapcore.DebugLevel
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg, level = zap.NewProductionConfig(), zapcore.InfoLevel
	case "test":
		level = zapcore.WarnLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		lvl, err := zap.ParseAtomicLevel(strings.ToLower(raw))
		if err != nil {
			return nil, fmt.Errorf("parse LOG_LEVEL %q: %w", raw, err)
		}
		cfg.Level = lvl
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: z.Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() { _ = l.SugaredLogger.Sync() }

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(scrub(kv)...)}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.SugaredLogger.Debugw(msg, scrub(kv)...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.SugaredLogger.Infow(msg, scrub(kv)...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.SugaredLogger.Warnw(msg, scrub(kv)...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.SugaredLogger.Errorw(msg, scrub(kv)...) }
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.SugaredLogger.Fatalw(msg, scrub(kv)...) }

const redacted = "[REDACTED]"

var secretKeyParts = []string{"token", "authorization", "password", "secret", "api_key", "email"}

type redaction struct {
	enabled bool
	salt    string
}

var (
	redactionOnce sync.Once
	redactionCfg  redaction
)

// LOG_REDACTION_ENABLED=false turns scrubbing off; LOG_HASH_SALT salts user id hashes.
func currentRedaction() redaction {
	redactionOnce.Do(func() {
		v := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED")))
		redactionCfg = redaction{
			enabled: v != "0" && v != "false" && v != "no" && v != "off",
			salt:    strings.TrimSpace(os.Getenv("LOG_HASH_SALT")),
		}
	})
	return redactionCfg
}

func scrub(kv []interface{}) []interface{} {
	cfg := currentRedaction()
	if len(kv) == 0 || !cfg.enabled {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i+1] = cfg.value(normalizeKey(out[i]), out[i+1])
	}
	return out
}

func (r redaction) value(key string, v interface{}) interface{} {
	switch {
	case key == "":
		return v
	case isSecretKey(key):
		return redacted
	case key == "user_id" || strings.HasSuffix(key, "_user_id"):
		return r.hash(v)
	}
	switch t := v.(type) {
	case string:
		if looksLikeJWT(t) {
			return redacted
		}
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, inner := range t {
			m[k] = r.value(normalizeKey(k), inner)
		}
		return m
	}
	return v
}

func (r redaction) hash(v interface{}) string {
	raw := stringify(v)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func isSecretKey(key string) bool {
	for _, part := range secretKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

func looksLikeJWT(s string) bool {
	head, rest, ok := strings.Cut(s, ".")
	if !ok {
		return false
	}
	payload, sig, ok := strings.Cut(rest, ".")
	return ok && !strings.Contains(sig, ".") && len(head) > 10 && len(payload) > 10
}

func normalizeKey(k interface{}) string {
	return strings.ToLower(stringify(k))
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
