package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		" INFO ": zapcore.InfoLevel,
		"warn":   zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
		"panic":  zapcore.PanicLevel,
		"fatal":  zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestNewWithSinks_SplitsByLevel checks that errors go to the error sink and progress to the output sink.
func TestNewWithSinks_SplitsByLevel(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	l := NewWithSinks(zap.NewAtomicLevelAt(zapcore.DebugLevel), zapcore.AddSync(&out), zapcore.AddSync(&errOut))

	l.Infow("module created", "id", 7)
	l.Errorw("upload failed", "status", 500)

	require.Contains(t, out.String(), "module created")
	require.NotContains(t, out.String(), "upload failed")
	require.Contains(t, errOut.String(), "upload failed")
	require.NotContains(t, errOut.String(), "module created")
}

// TestContextHelpers ensures loggers stored in the context are used and enriched.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))

	var out bytes.Buffer

	l := NewWithSinks(zap.NewAtomicLevelAt(zapcore.InfoLevel), zapcore.AddSync(&out), zapcore.AddSync(&out))
	ctx := ToContext(context.Background(), l)
	ctx = WithName(ctx, "publisher")
	ctx = WithKV(ctx, "run_id", "abc")

	InfoKV(ctx, "cycle started", "cycle", 1)
	Debug(ctx, "hidden")

	require.Contains(t, out.String(), "publisher")
	require.Contains(t, out.String(), "run_id")
	require.Contains(t, out.String(), "cycle started")
	require.NotContains(t, out.String(), "hidden")
}

// TestRetryLogger_RaisesRetryNotices verifies retry debug messages are logged at info.
func TestRetryLogger_RaisesRetryNotices(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	l := NewWithSinks(zap.NewAtomicLevelAt(zapcore.InfoLevel), zapcore.AddSync(&out), zapcore.AddSync(&out))
	r := NewRetryLogger(ToContext(context.Background(), l))

	r.Debug("performing request", "method", "GET")
	r.Debug("retrying request", "attempt", 1)

	require.NotContains(t, out.String(), "performing request")
	require.Contains(t, out.String(), "retrying request")
}
