package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func openTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestRegisterDBTracing(t *testing.T) {
	db := openTracedDB(t)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{SlowQueryThresh: 100 * time.Millisecond}))

	require.NoError(t, db.WithContext(context.Background()).Create(&tracedRow{Name: "a"}).Error)
	var rows []tracedRow
	require.NoError(t, db.WithContext(context.Background()).Find(&rows).Error)
	assert.Len(t, rows, 1)
}

func TestRegisterDBTracing_Twice(t *testing.T) {
	db := openTracedDB(t)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{}))
	assert.Error(t, RegisterDBTracing(db, DBTracingConfig{}))
}

func TestAnnotateSlowQuery(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx, span := tp.Tracer("test").Start(context.Background(), "query")
	ctx = context.WithValue(ctx, queryStartKey{}, time.Now().Add(-time.Second))
	tx := &gorm.DB{Statement: &gorm.Statement{Context: ctx, Table: "catalog_items"}}

	annotateSlowQuery(tx, 10*time.Millisecond)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	attrs := attrMap(ended[0].Attributes())
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.Equal(t, "catalog_items", attrs["db.sql.table"].AsString())
	assert.GreaterOrEqual(t, attrs["db.query_duration_ms"].AsInt64(), int64(1000))
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "slow_query", ended[0].Events()[0].Name)
}

func TestAnnotateSlowQuery_FastAndFailed(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx, span := tp.Tracer("test").Start(context.Background(), "query")
	ctx = context.WithValue(ctx, queryStartKey{}, time.Now())
	tx := &gorm.DB{Statement: &gorm.Statement{Context: ctx}, Error: errors.New("constraint failed")}

	annotateSlowQuery(tx, time.Hour)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.NotContains(t, attrMap(ended[0].Attributes()), "db.slow_query")
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestAnnotateSlowQuery_RecordNotFoundIsNotAnError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx, span := tp.Tracer("test").Start(context.Background(), "query")
	annotateSlowQuery(&gorm.DB{Statement: &gorm.Statement{Context: ctx}, Error: gorm.ErrRecordNotFound}, time.Hour)
	span.End()

	assert.Equal(t, codes.Unset, recorder.Ended()[0].Status().Code)
}
