package search

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/recordsearch/pkg/executor"
	"github.com/platinummonkey/recordsearch/pkg/observability"
	"github.com/platinummonkey/recordsearch/pkg/schema"
)

var searchTracer = otel.Tracer("recordsearch/search")

// Executor option keys owned by the search operation. Callers must not
// supply them through Options.Extra.
const (
	optionConditions = "conditions"
	optionInclude    = "include"
)

// Options carries the per-call knobs of a search.
type Options struct {
	// Order overrides the schema's default order-by tokens.
	Order []string

	// Conditions is a raw condition merged after all strategy-derived
	// clauses.
	Conditions *RawCondition

	// Extra is forwarded verbatim to the executor (pagination, locking).
	// It must not contain the conditions or include keys.
	Extra map[string]any
}

// Service compiles search criteria against registered schemas and
// dispatches the result to an executor.
type Service struct {
	registry *schema.Registry
	exec     executor.Executor
	log      *logrus.Logger
	metrics  *observability.Metrics
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *logrus.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a search service.
func NewService(registry *schema.Registry, exec executor.Executor, opts ...ServiceOption) *Service {
	s := &Service{
		registry: registry,
		exec:     exec,
		log:      logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the schema registry the service searches against.
func (s *Service) Registry() *schema.Registry {
	return s.registry
}

// Search compiles criteria for typeID and runs the resulting query.
//
// Forbidden passthrough options are rejected before any other processing.
// Criteria keys are normalized, validated against the registered schema,
// compiled per strategy, merged with the raw condition, and dispatched with
// the resolved order and the schema's eager-load directive. Empty criteria
// match all records under the active ordering.
func (s *Service) Search(ctx context.Context, typeID string, criteria *Criteria, opts *Options) ([]executor.Record, error) {
	ctx, span := searchTracer.Start(ctx, "Search",
		trace.WithAttributes(
			attribute.String("search.record_type", typeID),
			attribute.Int("search.criteria_count", criteria.Len()),
		),
	)
	defer span.End()

	start := time.Now()
	records, err := s.search(ctx, typeID, criteria, opts)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SearchesTotal.WithLabelValues(typeID, "error").Inc()
			s.metrics.CompileErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SearchesTotal.WithLabelValues(typeID, "ok").Inc()
		s.metrics.SearchDuration.WithLabelValues(typeID).Observe(time.Since(start).Seconds())
	}
	span.SetAttributes(attribute.Int("search.record_count", len(records)))
	span.SetStatus(codes.Ok, "search completed")
	return records, nil
}

func (s *Service) search(ctx context.Context, typeID string, criteria *Criteria, opts *Options) ([]executor.Record, error) {
	if opts == nil {
		opts = &Options{}
	}

	// Forbidden options fail before any compilation occurs.
	for _, key := range []string{optionConditions, optionInclude} {
		if _, present := opts.Extra[key]; present {
			return nil, &ArgumentConflictError{Key: key}
		}
	}

	sch, ok := s.registry.Lookup(typeID)
	if !ok {
		return nil, &NotRegisteredError{TypeID: typeID}
	}

	cond, err := Compile(sch, criteria, opts.Conditions)
	if err != nil {
		return nil, err
	}

	order := opts.Order
	if len(order) == 0 {
		order = sch.DefaultOrder()
	}

	query := executor.Query{
		Table:      typeID,
		Conditions: cond.Expr,
		Params:     cond.Params,
		Order:      strings.Join(order, ", "),
		EagerLoad:  sch.EagerLoad(),
		Finder:     sch.Finder(),
		Extra:      opts.Extra,
	}

	s.log.WithFields(logrus.Fields{
		"record_type": typeID,
		"conditions":  cond.Expr,
		"params":      len(cond.Params),
	}).Debug("compiled search conditions")

	return s.exec.Find(ctx, query)
}
