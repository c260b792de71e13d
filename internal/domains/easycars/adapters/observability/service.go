package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
)

const tracerName = "github.com/Apurer/dealership-sync/internal/domains/easycars/adapters/observability/service"

// Service decorates the EasyCars sync port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// SyncStock pulls the dealership's advertised stock with instrumentation.
func (s *Service) SyncStock(ctx context.Context, dealershipID int64) *domain.SyncResult {
	ctx, span := s.startSpan(ctx, "Service.SyncStock", attribute.Int64("dealership.id", dealershipID))
	defer span.End()

	s.logInfo(ctx, "syncing stock", slog.Int64("dealership.id", dealershipID))
	result := s.inner.SyncStock(ctx, dealershipID)
	s.observeResult(ctx, span, result)
	return result
}

// PushLead sends one local lead to EasyCars.
func (s *Service) PushLead(ctx context.Context, leadID int64) *domain.SyncResult {
	ctx, span := s.startSpan(ctx, "Service.PushLead", attribute.Int64("lead.id", leadID))
	defer span.End()

	s.logInfo(ctx, "pushing lead", slog.Int64("lead.id", leadID))
	result := s.inner.PushLead(ctx, leadID)
	if result != nil && result.LeadNumber != "" {
		span.SetAttributes(attribute.String("easycars.lead_number", result.LeadNumber))
	}
	s.observeResult(ctx, span, result, slog.Int64("lead.id", leadID))
	return result
}

// SyncLeadStatuses reconciles linked lead statuses.
func (s *Service) SyncLeadStatuses(ctx context.Context, dealershipID int64) *domain.SyncResult {
	ctx, span := s.startSpan(ctx, "Service.SyncLeadStatuses", attribute.Int64("dealership.id", dealershipID))
	defer span.End()

	s.logInfo(ctx, "syncing lead statuses", slog.Int64("dealership.id", dealershipID))
	result := s.inner.SyncLeadStatuses(ctx, dealershipID)
	s.observeResult(ctx, span, result)
	return result
}

// ImportLead creates or refreshes a local lead from a remote lead number.
func (s *Service) ImportLead(ctx context.Context, dealershipID int64, leadNumber string) (*leads.Lead, *domain.SyncResult) {
	ctx, span := s.startSpan(ctx, "Service.ImportLead",
		attribute.Int64("dealership.id", dealershipID),
		attribute.String("easycars.lead_number", leadNumber),
	)
	defer span.End()

	s.logInfo(ctx, "importing lead", slog.Int64("dealership.id", dealershipID), slog.String("lead_number", leadNumber))
	lead, result := s.inner.ImportLead(ctx, dealershipID, leadNumber)
	if lead != nil {
		span.SetAttributes(attribute.Int64("lead.id", lead.ID))
	}
	s.observeResult(ctx, span, result, slog.String("lead_number", leadNumber))
	return lead, result
}

// ResolveConflict closes a status conflict.
func (s *Service) ResolveConflict(ctx context.Context, conflictID string, resolution leads.Resolution) (*leads.StatusConflict, error) {
	ctx, span := s.startSpan(ctx, "Service.ResolveConflict",
		attribute.String("conflict.id", conflictID),
		attribute.String("conflict.resolution", string(resolution)),
	)
	defer span.End()

	s.logInfo(ctx, "resolving conflict", slog.String("conflict.id", conflictID), slog.String("resolution", string(resolution)))
	conflict, err := s.inner.ResolveConflict(ctx, conflictID, resolution)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to resolve conflict", slog.String("conflict.id", conflictID))
	}
	s.metrics.recordResolved(ctx, resolution)
	s.logInfo(ctx, "conflict resolved", slog.String("conflict.id", conflictID), slog.Int64("lead.id", conflict.LeadID))
	return conflict, nil
}

// ListSyncLogs returns the newest audit records.
func (s *Service) ListSyncLogs(ctx context.Context, dealershipID int64, limit int) ([]domain.SyncLog, error) {
	ctx, span := s.startSpan(ctx, "Service.ListSyncLogs", attribute.Int64("dealership.id", dealershipID))
	defer span.End()

	logs, err := s.inner.ListSyncLogs(ctx, dealershipID, limit)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list sync logs", slog.Int64("dealership.id", dealershipID))
	}
	span.SetAttributes(attribute.Int("sync_log.result.count", len(logs)))
	return logs, nil
}

func (s *Service) ListOpenConflicts(ctx context.Context, dealershipID int64) ([]*leads.StatusConflict, error) {
	ctx, span := s.startSpan(ctx, "Service.ListOpenConflicts", attribute.Int64("dealership.id", dealershipID))
	defer span.End()

	conflicts, err := s.inner.ListOpenConflicts(ctx, dealershipID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list conflicts", slog.Int64("dealership.id", dealershipID))
	}
	span.SetAttributes(attribute.Int("conflict.result.count", len(conflicts)))
	return conflicts, nil
}

func (s *Service) observeResult(ctx context.Context, span trace.Span, result *domain.SyncResult, extra ...slog.Attr) {
	if result == nil {
		return
	}
	span.SetAttributes(
		attribute.String("sync.type", string(result.SyncType)),
		attribute.String("sync.status", string(result.Status)),
		attribute.Int("sync.items.processed", result.ItemsProcessed),
		attribute.Int("sync.items.failed", result.ItemsFailed),
	)
	s.metrics.recordRun(ctx, result)

	attrs := append([]slog.Attr{
		slog.Int64("dealership.id", result.DealershipID),
		slog.String("sync.type", string(result.SyncType)),
		slog.String("status", string(result.Status)),
		slog.Int("processed", result.ItemsProcessed),
		slog.Int("succeeded", result.ItemsSucceeded),
		slog.Int("failed", result.ItemsFailed),
		slog.Duration("duration", result.Duration),
	}, extra...)

	switch result.Status {
	case domain.SyncStatusFailed:
		span.SetStatus(codes.Error, firstError(result))
		attrs = append(attrs, slog.Bool("retryable", result.Retryable), slog.Any("errors", result.Errors))
		s.logger.LogAttrs(ctx, slog.LevelError, "sync failed", attrs...)
	case domain.SyncStatusPartialSuccess:
		attrs = append(attrs, slog.Any("errors", result.Errors))
		s.logger.LogAttrs(ctx, slog.LevelWarn, "sync partially succeeded", attrs...)
	default:
		s.logInfo(ctx, "sync completed", attrs...)
	}
}

func firstError(result *domain.SyncResult) string {
	if len(result.Errors) == 0 {
		return string(result.Status)
	}
	return result.Errors[0]
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	runs      metric.Int64Counter
	items     metric.Int64Counter
	conflicts metric.Int64Counter
	images    metric.Int64Counter
	resolved  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	runs, _ := m.Int64Counter("easycars.sync.runs", metric.WithDescription("Number of sync runs by type and status"))
	items, _ := m.Int64Counter("easycars.sync.items", metric.WithDescription("Number of processed items by outcome"))
	conflicts, _ := m.Int64Counter("easycars.sync.conflicts", metric.WithDescription("Number of lead status conflicts opened"))
	images, _ := m.Int64Counter("easycars.sync.images", metric.WithDescription("Number of vehicle images imported by outcome"))
	resolved, _ := m.Int64Counter("easycars.conflicts.resolved", metric.WithDescription("Number of conflicts resolved by staff"))
	return serviceMetrics{runs: runs, items: items, conflicts: conflicts, images: images, resolved: resolved}
}

func (m serviceMetrics) recordRun(ctx context.Context, result *domain.SyncResult) {
	syncType := attribute.String("sync.type", string(result.SyncType))
	addCounter(ctx, m.runs, 1, syncType, attribute.String("sync.status", string(result.Status)))
	if result.ItemsSucceeded > 0 {
		addCounter(ctx, m.items, int64(result.ItemsSucceeded), syncType, attribute.String("outcome", "succeeded"))
	}
	if result.ItemsFailed > 0 {
		addCounter(ctx, m.items, int64(result.ItemsFailed), syncType, attribute.String("outcome", "failed"))
	}
	if result.ConflictsCreated > 0 {
		addCounter(ctx, m.conflicts, int64(result.ConflictsCreated))
	}
	if result.ImagesImported > 0 {
		addCounter(ctx, m.images, int64(result.ImagesImported), attribute.String("outcome", "imported"))
	}
	if result.ImagesFailed > 0 {
		addCounter(ctx, m.images, int64(result.ImagesFailed), attribute.String("outcome", "failed"))
	}
}

func (m serviceMetrics) recordResolved(ctx context.Context, resolution leads.Resolution) {
	addCounter(ctx, m.resolved, 1, attribute.String("conflict.resolution", string(resolution)))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
