package observability

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

// OtelConfig selects where goal traces and metrics go. With Enabled false
// InitOTel leaves the global no-op providers in place.
type OtelConfig struct {
	Enabled     bool
	ServiceName string
	Environment string
	Version     string

	// Endpoint is the OTLP/HTTP collector. Empty sends traces to stdout and
	// keeps metrics on the no-op provider.
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	SampleRatio float64
}

var (
	otelOnce     sync.Once
	otelShutdown = func(context.Context) error { return nil }
)

// InitOTel installs the SDK providers once per process and returns their
// combined shutdown. Exporter failures are logged and never fatal.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	if log == nil {
		log = logger.Nop()
	}
	otelOnce.Do(func() {
		if !cfg.Enabled {
			return
		}
		if cfg.ServiceName = strings.TrimSpace(cfg.ServiceName); cfg.ServiceName == "" {
			cfg.ServiceName = "careercoach-goals"
		}
		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.Version),
			attribute.String("deployment.environment", cfg.Environment),
		))
		if err != nil {
			log.Warn("otel resource init failed (continuing)", "error", err)
		}

		tp := newTracerProvider(ctx, log, cfg, res)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
		shutdowns := []func(context.Context) error{tp.Shutdown}

		// Instruments created from the global provider before this point delegate to mp.
		mp, err := newMeterProvider(ctx, cfg, res)
		switch {
		case err != nil:
			log.Warn("otel metric exporter init failed (continuing)", "error", err)
		case mp != nil:
			otel.SetMeterProvider(mp)
			shutdowns = append(shutdowns, mp.Shutdown)
		}

		otelShutdown = func(ctx context.Context) error {
			errs := make([]error, 0, len(shutdowns))
			for _, fn := range shutdowns {
				errs = append(errs, fn(ctx))
			}
			return errors.Join(errs...)
		}
		log.Info("otel initialized", "service", cfg.ServiceName, "endpoint", cfg.Endpoint, "metrics", mp != nil)
	})
	return otelShutdown
}

// Tracer returns the named tracer from the global provider. Spans are no-ops until
// InitOTel installs an SDK provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

func newTracerProvider(ctx context.Context, log *logger.Logger, cfg OtelConfig, res *resource.Resource) *sdktrace.TracerProvider {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(res),
	}
	exp, err := newSpanExporter(ctx, cfg)
	switch {
	case err != nil:
		log.Warn("otel exporter init failed (continuing)", "error", err)
	case cfg.Endpoint == "":
		log.Warn("otel using stdout exporter (no OTLP endpoint configured)")
	}
	if err == nil {
		opts = append(opts, sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(5*time.Second)))
	}
	return sdktrace.NewTracerProvider(opts...)
}

func newSpanExporter(ctx context.Context, cfg OtelConfig) (sdktrace.SpanExporter, error) {
	if cfg.Endpoint == "" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

// newMeterProvider returns nil without an endpoint. The SDK reads the export
// interval from OTEL_METRIC_EXPORT_INTERVAL.
func newMeterProvider(ctx context.Context, cfg OtelConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
	}
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	), nil
}

// ParseHeaders reads OTEL_EXPORTER_OTLP_HEADERS syntax: comma separated
// key=value pairs. Malformed pairs are skipped.
func ParseHeaders(raw string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if ok && k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
