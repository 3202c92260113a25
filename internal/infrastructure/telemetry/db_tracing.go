package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// DBTracingConfig holds database tracing configuration
type DBTracingConfig struct {
	// LogFullSQL keeps bound values in db.statement; development only
	LogFullSQL      bool
	SlowQueryThresh time.Duration
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm plus a callback that annotates spans of slow statements
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig) error {
	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if cfg.SlowQueryThresh <= 0 {
		return nil
	}

	markStart := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	markSlow := func(tx *gorm.DB) { annotateSlowQuery(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	errs := []error{
		cb.Create().Before("gorm:create").Register("menusync:start_create", markStart),
		cb.Query().Before("gorm:query").Register("menusync:start_query", markStart),
		cb.Update().Before("gorm:update").Register("menusync:start_update", markStart),
		cb.Delete().Before("gorm:delete").Register("menusync:start_delete", markStart),
		cb.Raw().Before("gorm:raw").Register("menusync:start_raw", markStart),
		cb.Create().After("gorm:create").Register("menusync:slow_create", markSlow),
		cb.Query().After("gorm:query").Register("menusync:slow_query", markSlow),
		cb.Update().After("gorm:update").Register("menusync:slow_update", markSlow),
		cb.Delete().After("gorm:delete").Register("menusync:slow_delete", markSlow),
		cb.Raw().After("gorm:raw").Register("menusync:slow_raw", markSlow),
	}
	return errors.Join(errs...)
}

func annotateSlowQuery(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if elapsed < threshold {
		return
	}
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		attribute.String("db.sql.table", tx.Statement.Table),
	)
	span.AddEvent("slow_query", trace.WithAttributes(
		attribute.Int64("duration_ms", elapsed.Milliseconds()),
		attribute.Int64("threshold_ms", threshold.Milliseconds()),
	))
}
