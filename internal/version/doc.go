// Package version exposes build metadata for hawkbit-publish.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags.
package version
