package logger

import (
	"context"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// retryKeyword marks the retryablehttp debug messages worth surfacing at info level.
const retryKeyword = "retrying"

// RetryLogger adapts a zap logger to retryablehttp.LeveledLogger.
type RetryLogger struct {
	l *zap.SugaredLogger
}

var _ retryablehttp.LeveledLogger = (*RetryLogger)(nil)

// NewRetryLogger returns a retryablehttp logger backed by the context logger.
func NewRetryLogger(ctx context.Context) *RetryLogger {
	return &RetryLogger{
		l: FromContext(ctx).Named("http"),
	}
}

// Error implements retryablehttp.LeveledLogger.
func (r *RetryLogger) Error(msg string, keysAndValues ...any) {
	r.l.Errorw(msg, keysAndValues...)
}

// Info implements retryablehttp.LeveledLogger.
func (r *RetryLogger) Info(msg string, keysAndValues ...any) {
	r.l.Infow(msg, keysAndValues...)
}

// Debug implements retryablehttp.LeveledLogger. Retry notices are raised to
// info so they stay visible without --verbose.
func (r *RetryLogger) Debug(msg string, keysAndValues ...any) {
	if strings.Contains(msg, retryKeyword) {
		r.l.Infow(msg, keysAndValues...)
		return
	}

	r.l.Debugw(msg, keysAndValues...)
}

// Warn implements retryablehttp.LeveledLogger.
func (r *RetryLogger) Warn(msg string, keysAndValues ...any) {
	r.l.Warnw(msg, keysAndValues...)
}
