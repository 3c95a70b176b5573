package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"studyhub/internal/config"
)

type AppMetrics struct {
	authCounter       metric.Int64Counter
	tokenCounter      metric.Int64Counter
	repositoryCounter metric.Int64Counter
	membershipCounter metric.Int64Counter
	attendanceCounter metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		registerCounters(mp)
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)
	registerCounters(mp)
	return mp, nil
}

func registerCounters(mp *sdkmetric.MeterProvider) {
	meter := mp.Meter("studyhub")
	m := &AppMetrics{}
	m.authCounter, _ = meter.Int64Counter("auth.events")
	m.tokenCounter, _ = meter.Int64Counter("token.validations")
	m.repositoryCounter, _ = meter.Int64Counter("repository.operations")
	m.membershipCounter, _ = meter.Int64Counter("membership.transitions")
	m.attendanceCounter, _ = meter.Int64Counter("attendance.events")

	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()
}

func current() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordAuthEvent(ctx context.Context, event, outcome string) {
	m := current()
	if m == nil || m.authCounter == nil {
		return
	}
	m.authCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("outcome", outcome),
	))
}

func RecordTokenValidation(ctx context.Context, kind, outcome string) {
	m := current()
	if m == nil || m.tokenCounter == nil {
		return
	}
	m.tokenCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	m := current()
	if m == nil || m.repositoryCounter == nil {
		return
	}
	m.repositoryCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordMembershipTransition(ctx context.Context, to, outcome string) {
	m := current()
	if m == nil || m.membershipCounter == nil {
		return
	}
	m.membershipCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("to", to),
		attribute.String("outcome", outcome),
	))
}

func RecordAttendanceEvent(ctx context.Context, event, outcome string) {
	m := current()
	if m == nil || m.attendanceCounter == nil {
		return
	}
	m.attendanceCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("outcome", outcome),
	))
}
