package database

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func observed() (logger.Interface, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core)), logs
}

func statement() (string, int64) {
	return "SELECT * FROM operators", 2
}

func TestGormLoggerFailedQuery(t *testing.T) {
	l, logs := observed()

	l.Trace(context.Background(), time.Now(), statement, stderrors.New("relation does not exist"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "query failed", entries[0].Message)
	assert.Equal(t, "SELECT * FROM operators", entries[0].ContextMap()["sql"])
	assert.Equal(t, "gorm", entries[0].LoggerName)
}

func TestGormLoggerSkipsNotFound(t *testing.T) {
	l, logs := observed()
	l.Trace(context.Background(), time.Now(), statement, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())
}

func TestGormLoggerSlowQuery(t *testing.T) {
	l, logs := observed()

	l.Trace(context.Background(), time.Now().Add(-2*SlowQueryThreshold), statement, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)

	l.Trace(context.Background(), time.Now(), statement, nil)
	assert.Equal(t, 1, logs.Len())
}

func TestGormLoggerLevels(t *testing.T) {
	l, logs := observed()

	l.LogMode(logger.Silent).Trace(context.Background(), time.Now(), statement, stderrors.New("boom"))
	assert.Zero(t, logs.Len())

	l.Info(context.Background(), "hidden %d", 1)
	l.Warn(context.Background(), "pool %s", "exhausted")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "pool exhausted", logs.All()[0].Message)

	l.LogMode(logger.Info).Trace(context.Background(), time.Now(), statement, nil)
	assert.Equal(t, zapcore.DebugLevel, logs.All()[1].Level)
}
