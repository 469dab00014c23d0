package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	dbTracerName    = "kedai.pgx"
	maxStatementLen = 300
)

// storeTables maps the tables the API reads and writes to the store that owns them.
var storeTables = map[string]string{
	"categories":           "catalog",
	"menu_items":           "catalog",
	"menu_item_variations": "catalog",
	"menu_item_add_ons":    "catalog",
	"payment_methods":      "payment",
	"site_settings":        "settings",
}

type ctxSpanKey struct{}

// PGXTracer implements pgx.QueryTracer and pgx.BatchTracer. Spans are named
// after the statement's operation and table, e.g. "SELECT menu_items".
type PGXTracer struct{}

var (
	_ pgx.QueryTracer = PGXTracer{}
	_ pgx.BatchTracer = PGXTracer{}
)

// TraceQueryStart starts a span for the SQL statement.
func (PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	op, table := statementInfo(data.SQL)
	ctx, span := otel.Tracer(dbTracerName).Start(ctx, spanName(op, table), trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(statementAttributes(data.SQL, op, table)...)
	return context.WithValue(ctx, ctxSpanKey{}, span)
}

// TraceQueryEnd ends the span and records any error.
func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span, ok := ctx.Value(ctxSpanKey{}).(trace.Span)
	if !ok {
		return
	}
	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
	} else {
		span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	}
	span.End()
}

// TraceBatchStart opens a span covering a whole batch, such as the variation
// and add-on rewrite that follows a menu item upsert.
func (PGXTracer) TraceBatchStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceBatchStartData) context.Context {
	ctx, span := otel.Tracer(dbTracerName).Start(ctx, "pgx batch", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("db.system", "postgresql"))
	if data.Batch != nil {
		span.SetAttributes(attribute.Int("db.batch.size", data.Batch.Len()))
	}
	return context.WithValue(ctx, ctxSpanKey{}, span)
}

// TraceBatchQuery records each queued statement as an event on the batch span.
func (PGXTracer) TraceBatchQuery(ctx context.Context, _ *pgx.Conn, data pgx.TraceBatchQueryData) {
	span, ok := ctx.Value(ctxSpanKey{}).(trace.Span)
	if !ok {
		return
	}
	op, table := statementInfo(data.SQL)
	span.AddEvent(spanName(op, table), trace.WithAttributes(statementAttributes(data.SQL, op, table)...))
	if data.Err != nil {
		span.RecordError(data.Err)
	}
}

// TraceBatchEnd ends the batch span.
func (PGXTracer) TraceBatchEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceBatchEndData) {
	span, ok := ctx.Value(ctxSpanKey{}).(trace.Span)
	if !ok {
		return
	}
	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
	}
	span.End()
}

func statementAttributes(sql, op, table string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.statement", truncateSQL(sql)),
	}
	if op != "" {
		attrs = append(attrs, attribute.String("db.operation", op))
	}
	if table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", table))
		if store, ok := storeTables[table]; ok {
			attrs = append(attrs, attribute.String("kedai.store", store))
		}
	}
	return attrs
}

func spanName(op, table string) string {
	switch {
	case op == "":
		return "pgx query"
	case table == "":
		return op
	default:
		return op + " " + table
	}
}

// statementInfo returns the leading keyword of sql and the first table named
// after FROM, INTO, UPDATE or JOIN.
func statementInfo(sql string) (op, table string) {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "", ""
	}
	op = strings.ToUpper(fields[0])
	for i := 0; i < len(fields)-1; i++ {
		switch strings.ToUpper(fields[i]) {
		case "FROM", "INTO", "UPDATE", "JOIN":
			name := strings.ToLower(strings.Trim(fields[i+1], `"(),;`))
			name = strings.TrimPrefix(name, "public.")
			if name != "" {
				return op, name
			}
		}
	}
	return op, ""
}

func truncateSQL(sql string) string {
	trimmed := strings.TrimSpace(sql)
	if len(trimmed) > maxStatementLen {
		return trimmed[:maxStatementLen] + "..."
	}
	return trimmed
}
