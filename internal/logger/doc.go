// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder that sends errors to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - an adapter satisfying retryablehttp.LeveledLogger.
//
// Services accept a context and extract the logger from it, so a run id or a
// cycle number attached once shows up in every message below it.
package logger
