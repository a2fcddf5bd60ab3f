package logging

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	errs "github.com/ben-daghir/hercap/pkg/errors"
)

// newTestLogger returns a logger writing JSON entries to a buffer.
func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo, Format: "json", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelDebug, Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hercap.log")
	l, err := NewLogger(LogConfig{Level: LevelInfo, OutputPaths: []string{path}})
	require.NoError(t, err)
	l.Info("written")
	require.NoError(t, l.Sync())
	assert.FileExists(t, path)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	l.Fatal("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
	assert.Equal(t, l, l.WithContext(context.Background()))
	assert.Equal(t, l, l.WithError(errors.New("err")))
	assert.NoError(t, l.Sync())
}

func TestZapLogger_LevelsWriteLogs(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")

	out := buf.String()
	for _, level := range []string{"debug", "info", "warn", "error"} {
		assert.Contains(t, out, level+" msg")
		assert.Contains(t, out, `"level":"`+level+`"`)
	}
}

func TestZapLogger_With_AddsFields(t *testing.T) {
	l, buf := newTestLogger(t)
	l.With(String("view", "globe"), Int("clusters", 3), Strings("cats", []string{"AI"})).Info("msg")
	assert.Contains(t, buf.String(), `"view":"globe"`)
	assert.Contains(t, buf.String(), `"clusters":3`)
	assert.Contains(t, buf.String(), `"cats":["AI"]`)
}

func TestZapLogger_WithContext_ExtractsRequestID(t *testing.T) {
	l, buf := newTestLogger(t)
	ctx := WithRequestID(context.Background(), "req-123")
	l.WithContext(ctx).Info("msg")
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
}

func TestZapLogger_WithContext_NoRequestID(t *testing.T) {
	l, _ := newTestLogger(t)
	assert.Same(t, l, l.WithContext(context.Background()))
}

func TestZapLogger_WithError_AppError(t *testing.T) {
	l, buf := newTestLogger(t)
	appErr := errs.New(errs.ErrCodeFeedFetchFailed, "sheet unreachable")
	l.WithError(appErr).Error("msg")
	assert.Contains(t, buf.String(), `"error_code":"FEED_001"`)
	assert.Contains(t, buf.String(), `"error":"[FEED_001] sheet unreachable"`)
}

func TestZapLogger_WithError_StandardError(t *testing.T) {
	l, buf := newTestLogger(t)
	l.WithError(errors.New("std error")).Error("msg")
	assert.Contains(t, buf.String(), `"error":"std error"`)
	assert.NotContains(t, buf.String(), "error_code")
}

func TestZapLogger_WithError_NilError(t *testing.T) {
	l, buf := newTestLogger(t)
	l.WithError(nil).Info("msg")
	assert.NotContains(t, buf.String(), `"error"`)
}

func TestNewLoggerFromCore_Observed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLoggerFromCore(core).Named("feed")
	l.Debug("hidden")
	l.Info("loaded", Int("companies", 12), Duration("took", time.Second))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "feed", entry.LoggerName)
	assert.Equal(t, int64(12), entry.ContextMap()["companies"])
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": LevelDebug, "INFO": LevelInfo, "": LevelInfo, "warning": LevelWarn, "error": LevelError}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseLevel("invalid")
	assert.Error(t, err)
	assert.Equal(t, "info", LevelInfo.String())
}

func TestNewLogger_ConsoleOnStderr(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelWarn, Format: "console", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	l.Named("cli").Warn("visible")
	l.Named("cli").Info("hidden")
}

func TestSetLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.log")
	l, err := NewLogger(LogConfig{Level: LevelWarn, OutputPaths: []string{path}})
	require.NoError(t, err)
	child := l.Named("feed")

	child.Info("before")
	require.True(t, SetLevel(l, LevelDebug))
	child.Info("after")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "before")
	assert.Contains(t, string(data), "after")

	assert.False(t, SetLevel(NewNopLogger(), LevelDebug))
}

//Personal.AI order the ending
