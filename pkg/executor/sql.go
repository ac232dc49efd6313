package executor

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/recordsearch/pkg/observability"
)

var executorTracer = otel.Tracer("recordsearch/executor")

// Dialect selects placeholder style and introspection queries.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
	MySQL    Dialect = "mysql"
)

// RelationLoader attaches a named relation to a batch of matched records.
type RelationLoader func(ctx context.Context, records []Record) error

const columnCacheSize = 128

// SQLExecutor runs compiled queries against a database/sql connection.
type SQLExecutor struct {
	db        *sql.DB
	dialect   Dialect
	log       *logrus.Logger
	columns   *lru.Cache[string, map[string]struct{}]
	relations map[string]RelationLoader
	cache     *ResultCache
	metrics   *observability.Metrics
}

// SQLOption configures a SQLExecutor.
type SQLOption func(*SQLExecutor)

// WithLogger sets the executor logger.
func WithLogger(log *logrus.Logger) SQLOption {
	return func(e *SQLExecutor) { e.log = log }
}

// WithRelation registers an eager-load loader under a relation name.
func WithRelation(name string, loader RelationLoader) SQLOption {
	return func(e *SQLExecutor) { e.relations[name] = loader }
}

// WithCache enables the Redis result cache.
func WithCache(cache *ResultCache) SQLOption {
	return func(e *SQLExecutor) { e.cache = cache }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) SQLOption {
	return func(e *SQLExecutor) { e.metrics = m }
}

// NewSQLExecutor creates an executor for db speaking the given dialect.
func NewSQLExecutor(db *sql.DB, dialect Dialect, opts ...SQLOption) (*SQLExecutor, error) {
	switch dialect {
	case Postgres, SQLite, MySQL:
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	columns, err := lru.New[string, map[string]struct{}](columnCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create column cache: %w", err)
	}

	e := &SQLExecutor{
		db:        db,
		dialect:   dialect,
		log:       logrus.New(),
		columns:   columns,
		relations: make(map[string]RelationLoader),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// DB returns the underlying connection for health checks.
func (e *SQLExecutor) DB() *sql.DB {
	return e.db
}

// HasColumn reports whether table has a column with the given name.
func (e *SQLExecutor) HasColumn(ctx context.Context, table, column string) (bool, error) {
	cols, err := e.tableColumns(ctx, table)
	if err != nil {
		return false, err
	}
	_, ok := cols[column]
	return ok, nil
}

func (e *SQLExecutor) tableColumns(ctx context.Context, table string) (map[string]struct{}, error) {
	if cols, ok := e.columns.Get(table); ok {
		return cols, nil
	}

	var query string
	switch e.dialect {
	case Postgres:
		query = `SELECT column_name FROM information_schema.columns WHERE table_name = $1`
	case MySQL:
		query = `SELECT column_name FROM information_schema.columns WHERE table_name = ? AND table_schema = DATABASE()`
	case SQLite:
		query = `SELECT name FROM pragma_table_info(?)`
	}

	rows, err := e.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect table %q: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		cols[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %q: %w", table, err)
	}

	e.columns.Add(table, cols)
	return cols, nil
}

// Find executes a compiled query and returns the matching records.
func (e *SQLExecutor) Find(ctx context.Context, q Query) ([]Record, error) {
	ctx, span := executorTracer.Start(ctx, "Find",
		trace.WithAttributes(
			attribute.String("db.table", q.Table),
			attribute.String("db.finder", q.Finder),
		),
	)
	defer span.End()

	stmt, args, err := e.buildSelect(q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build statement")
		return nil, err
	}
	span.SetAttributes(attribute.String("db.statement", stmt))

	if e.cache != nil {
		records, hit, err := e.cache.Get(ctx, q.Table, stmt, args)
		if err != nil {
			// Cache trouble must not fail the query.
			e.log.WithError(err).Warn("result cache read failed")
		} else if hit {
			if e.metrics != nil {
				e.metrics.CacheHitsTotal.Inc()
			}
			return records, nil
		} else if e.metrics != nil {
			e.metrics.CacheMissesTotal.Inc()
		}
	}

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		if e.metrics != nil {
			e.metrics.ExecutorErrorsTotal.WithLabelValues(q.Table).Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to execute search query: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan failed")
		return nil, err
	}

	for _, relation := range q.EagerLoad {
		loader, ok := e.relations[relation]
		if !ok {
			return nil, fmt.Errorf("no loader registered for relation %q", relation)
		}
		if err := loader(ctx, records); err != nil {
			return nil, fmt.Errorf("failed to load relation %q: %w", relation, err)
		}
	}

	duration := time.Since(start)
	if e.metrics != nil {
		finder := q.Finder
		if finder == "" {
			finder = FinderAll
		}
		e.metrics.ExecutorQueriesTotal.WithLabelValues(q.Table, finder).Inc()
		e.metrics.ExecutorQueryDuration.WithLabelValues(q.Table).Observe(duration.Seconds())
	}
	e.log.WithFields(logrus.Fields{
		"table":    q.Table,
		"records":  len(records),
		"duration": duration,
	}).Debug("search query executed")

	if e.cache != nil {
		if err := e.cache.Set(ctx, q.Table, stmt, args, records); err != nil {
			e.log.WithError(err).Warn("result cache write failed")
		}
	}

	span.SetAttributes(attribute.Int("db.record_count", len(records)))
	span.SetStatus(codes.Ok, "query completed")
	return records, nil
}

// buildSelect renders the final SQL text. The table name, order tokens, and
// alias expressions come from the registered schema and are trusted; only
// criteria values travel as parameters.
func (e *SQLExecutor) buildSelect(q Query) (string, []any, error) {
	expr, params, err := expandListParams(q.Conditions, q.Params)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(q.Table)
	if expr != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(expr)
	}
	if q.Order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(q.Order)
	}

	switch q.Finder {
	case FinderAll, "":
		if limit, ok := intOption(q.Extra, "limit"); ok {
			sb.WriteString(" LIMIT ")
			sb.WriteString(strconv.Itoa(limit))
		}
		if offset, ok := intOption(q.Extra, "offset"); ok {
			sb.WriteString(" OFFSET ")
			sb.WriteString(strconv.Itoa(offset))
		}
	case FinderFirst:
		sb.WriteString(" LIMIT 1")
	default:
		return "", nil, fmt.Errorf("unknown finder method %q", q.Finder)
	}

	if lock, ok := q.Extra["lock"].(bool); ok && lock && e.dialect != SQLite {
		sb.WriteString(" FOR UPDATE")
	}

	stmt := sb.String()
	if e.dialect == Postgres {
		stmt = rebind(stmt)
	}
	return stmt, params, nil
}

// expandListParams rewrites each placeholder bound to a slice or array into
// one placeholder per element, flattening the parameter list. It also
// enforces that the placeholder count matches the parameter count, which
// keeps the compiler's positional invariant mechanically checked at the
// last point before execution.
func expandListParams(expr string, params []any) (string, []any, error) {
	placeholders := strings.Count(expr, "?")
	if placeholders != len(params) {
		return "", nil, fmt.Errorf("expression has %d placeholders but %d parameters", placeholders, len(params))
	}
	if expr == "" {
		return "", nil, nil
	}

	var sb strings.Builder
	out := make([]any, 0, len(params))
	next := 0
	for _, ch := range expr {
		if ch != '?' {
			sb.WriteRune(ch)
			continue
		}
		p := params[next]
		next++

		rv := reflect.ValueOf(p)
		if p == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Type() == reflect.TypeOf([]byte(nil)) {
			sb.WriteByte('?')
			out = append(out, p)
			continue
		}
		n := rv.Len()
		if n == 0 {
			return "", nil, fmt.Errorf("empty list parameter for IN placeholder")
		}
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('?')
			out = append(out, rv.Index(i).Interface())
		}
	}
	return sb.String(), out, nil
}

// rebind converts ?-style placeholders to the $N style Postgres expects.
func rebind(stmt string) string {
	var sb strings.Builder
	n := 0
	for _, ch := range stmt {
		if ch != '?' {
			sb.WriteRune(ch)
			continue
		}
		n++
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(n))
	}
	return sb.String()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	records := make([]Record, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		record := make(Record, len(cols))
		for i, col := range cols {
			record[col] = normalizeValue(values[i])
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

// normalizeValue turns driver byte slices into strings so records are
// JSON-encodable and comparable in tests regardless of driver.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func intOption(extra map[string]any, key string) (int, bool) {
	v, ok := extra[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
