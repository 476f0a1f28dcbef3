package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

const instrumentationName = "github.com/yungbote/recharge-backend"

// OtelConfig is read from the standard OTEL_* variables.
type OtelConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	ServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"recharge"`
	Environment string  `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	Version     string  `env:"OTEL_SERVICE_VERSION"`
	SampleRatio float64 `env:"OTEL_SAMPLER_RATIO" envDefault:"0.1"`
	// Exporter is "otlp", "stdout" or "none". Empty picks otlp when an
	// endpoint is set and stdout otherwise.
	Exporter string `env:"OTEL_TRACES_EXPORTER"`
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers  string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	Insecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
}

func (c OtelConfig) exporterKind() string {
	kind := strings.ToLower(strings.TrimSpace(c.Exporter))
	if kind != "" {
		return kind
	}
	if strings.TrimSpace(c.Endpoint) != "" {
		return "otlp"
	}
	return "stdout"
}

// InitOTel installs the global tracer provider and propagator. The returned
// func flushes pending spans; tracing failures never stop the process.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	if log == nil {
		log = logger.Nop()
	}
	if !cfg.Enabled {
		return func(context.Context) error { return nil }
	}

	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "recharge"
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(name),
		semconv.ServiceVersion(strings.TrimSpace(cfg.Version)),
		attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
	))
	if err != nil {
		log.Warn("otel resource merge failed", "error", err)
		res = resource.Default()
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(clampRatio(cfg.SampleRatio)))),
	}
	exp, err := newSpanExporter(ctx, cfg)
	switch {
	case err != nil:
		log.Warn("otel exporter unavailable, spans are dropped", "exporter", cfg.exporterKind(), "error", err)
	case exp != nil:
		opts = append(opts, sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(5*time.Second)))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	log.Info("otel tracing on", "service", name, "exporter", cfg.exporterKind())
	return tp.Shutdown
}

func newSpanExporter(ctx context.Context, cfg OtelConfig) (sdktrace.SpanExporter, error) {
	switch kind := cfg.exporterKind(); kind {
	case "none":
		return nil, nil
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp":
		endpoint := strings.TrimSpace(cfg.Endpoint)
		if endpoint == "" {
			return nil, fmt.Errorf("otlp exporter needs OTEL_EXPORTER_OTLP_ENDPOINT")
		}
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if h := parseHeaders(cfg.Headers); h != nil {
			opts = append(opts, otlptracehttp.WithHeaders(h))
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown exporter %q", kind)
	}
}

func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// EndSpan marks span failed when err is non-nil and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func clampRatio(f float64) float64 {
	return min(max(f, 0), 1)
}

// parseHeaders reads "k1=v1,k2=v2"; malformed pairs are skipped.
func parseHeaders(raw string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(part, "=")
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
