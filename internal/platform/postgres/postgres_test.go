package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestConnectRejectsEmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), "  ")
	require.ErrorIs(t, err, ErrEmptyDSN)
}

func TestOpenFallsBackWithoutDSN(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	db, cleanup := Open(context.Background(), "", logger)
	require.Nil(t, db)
	require.NotNil(t, cleanup)
	cleanup()
	require.Contains(t, buf.String(), "in-memory repositories")
}

func TestOptionsOverrideDefaults(t *testing.T) {
	s := newSettings([]Option{
		WithPool(25, 2),
		WithConnMaxLifetime(time.Minute),
		WithLogLevel(gormlogger.Silent),
		nil,
	})
	require.Equal(t, 25, s.maxOpenConns)
	require.Equal(t, 2, s.maxIdleConns)
	require.Equal(t, time.Minute, s.connMaxLifetime)
	require.Equal(t, gormlogger.Silent, s.logLevel)
}
