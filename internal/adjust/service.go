// Package adjust runs one climate adjustment per request: it resolves and
// verifies the input files, calls the external routine, and truncates the result.
package adjust

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-adjust-service/internal/domain"
	"github.com/couchcryptid/climate-adjust-service/internal/observability"
)

// EventPublisher receives a summary of every adjustment run.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.AdjustmentEvent) error
}

// Service orchestrates an adjustment. It holds no per-request state, so
// concurrent calls are independent.
type Service struct {
	dataDir   string
	adjuster  domain.Adjuster
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	timeout   time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithPublisher emits an audit event after every run.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithTimeout bounds each call into the adjuster. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// New creates a Service reading inputs from dataDir.
func New(dataDir string, adjuster domain.Adjuster, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		dataDir:  dataDir,
		adjuster: adjuster,
		logger:   logger,
		metrics:  metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckReadiness returns nil when every input file is present.
func (s *Service) CheckReadiness(_ context.Context) error {
	return domain.ResolveFilePaths(s.dataDir).Verify()
}

// Adjust runs the adjustment and returns at most domain.ResultLimit rows
// encoded as a JSON array of records. Errors are *domain.MissingFileError,
// *domain.ComputationError, or *domain.SerializationError.
func (s *Service) Adjust(ctx context.Context) ([]byte, error) {
	event := domain.NewAdjustmentEvent()
	clock := domain.Clock()
	start := clock.Now()

	s.metrics.InFlight.Inc()
	defer s.metrics.InFlight.Dec()

	result, data, err := s.run(ctx)

	elapsed := clock.Since(start)
	s.metrics.AdjustDuration.Observe(elapsed.Seconds())
	event.DurationMS = elapsed.Milliseconds()

	if err != nil {
		event.Outcome = outcomeOf(err)
		event.Error = err.Error()
		s.logger.Error("adjustment failed", "error", err, "request_id", event.ID, "outcome", event.Outcome)
	} else {
		event.Outcome = domain.OutcomeSuccess
		event.Rows = len(result.Rows)
		event.Columns = result.Columns
		s.metrics.RowsReturned.Observe(float64(len(result.Rows)))
		s.logger.Info("adjustment complete", "request_id", event.ID, "rows", event.Rows, "duration", elapsed)
	}
	s.metrics.AdjustRequests.WithLabelValues(event.Outcome).Inc()
	s.publish(ctx, event)

	return data, err
}

func (s *Service) run(ctx context.Context) (domain.Table, []byte, error) {
	paths := domain.ResolveFilePaths(s.dataDir)
	if err := paths.Verify(); err != nil {
		var mfe *domain.MissingFileError
		if errors.As(err, &mfe) {
			s.metrics.MissingFiles.WithLabelValues(mfe.Label).Inc()
		}
		return domain.Table{}, nil, err
	}

	for _, lp := range paths.Labeled() {
		s.logger.Debug("input resolved", "file", lp.Label, "path", lp.Path)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	table, err := s.adjuster.Adjust(ctx, domain.AdjustmentRequest{
		Params: domain.DefaultParams(),
		Paths:  paths,
	})
	if err != nil {
		return domain.Table{}, nil, &domain.ComputationError{Err: err}
	}
	s.logger.Debug("adjusted table received", "rows", len(table.Rows), "columns", len(table.Columns))

	head := table.Head(domain.ResultLimit)
	data, err := head.MarshalJSON()
	if err != nil {
		return domain.Table{}, nil, err
	}
	return head, data, nil
}

// publish sends the audit event. Failures are logged and never surface to the caller.
func (s *Service) publish(ctx context.Context, event domain.AdjustmentEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.metrics.AuditEvents.WithLabelValues("error").Inc()
		s.logger.Warn("publish audit event failed", "error", err, "request_id", event.ID)
		return
	}
	s.metrics.AuditEvents.WithLabelValues("published").Inc()
}

func outcomeOf(err error) string {
	var mfe *domain.MissingFileError
	if errors.As(err, &mfe) {
		return domain.OutcomeMissingFile
	}
	var se *domain.SerializationError
	if errors.As(err, &se) {
		return domain.OutcomeSerializationError
	}
	return domain.OutcomeComputationError
}
