package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

func newBufferedQueryLogger(slow time.Duration) (*queryLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: "debug", Format: logger.FormatJSON, Output: buf})
	return newQueryLogger(logg, slow), buf
}

func sqlOf(stmt string) func() (string, int64) {
	return func() (string, int64) { return stmt, 1 }
}

func TestQueryLoggerSkipsFastSuccessfulQueries(t *testing.T) {
	q, buf := newBufferedQueryLogger(time.Second)
	q.Trace(context.Background(), time.Now(), sqlOf("SELECT 1"), nil)
	assert.Empty(t, buf.String())
}

func TestQueryLoggerIgnoresRecordNotFound(t *testing.T) {
	q, buf := newBufferedQueryLogger(time.Second)
	q.Trace(context.Background(), time.Now(), sqlOf("SELECT * FROM shops"), gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())
}

func TestQueryLoggerReportsSlowQueries(t *testing.T) {
	q, buf := newBufferedQueryLogger(10 * time.Millisecond)
	q.Trace(context.Background(), time.Now().Add(-time.Second), sqlOf("SELECT * FROM orders"), nil)

	out := buf.String()
	assert.Contains(t, out, `"db.query_slow"`)
	assert.Contains(t, out, `"sql":"SELECT * FROM orders"`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestQueryLoggerReportsFailures(t *testing.T) {
	q, buf := newBufferedQueryLogger(time.Second)
	q.Trace(context.Background(), time.Now(), sqlOf("INSERT INTO ratings"), errors.New("constraint failed"))

	out := buf.String()
	assert.Contains(t, out, `"db.query_failed"`)
	assert.Contains(t, out, "constraint failed")
}

func TestQueryLoggerSilentMode(t *testing.T) {
	q, buf := newBufferedQueryLogger(time.Millisecond)
	silent := q.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now().Add(-time.Second), sqlOf("SELECT 1"), errors.New("boom"))
	assert.Empty(t, buf.String())
	assert.Equal(t, gormlogger.Warn, q.level, "LogMode must not mutate the receiver")
}
