package imagepipe

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discardHandler drops every record and reports all levels as disabled.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

var silentLogger = slog.New(discardHandler{})

var activeLogger atomic.Pointer[slog.Logger]

func init() {
	activeLogger.Store(silentLogger)
}

// SetLogger routes imagepipe diagnostics to l. A nil l silences them again,
// which is also the initial state. It may be called at any time, from any
// goroutine.
//
// Records emitted:
//   - [slog.LevelDebug]: each normalization stage, intermediate surface
//     allocation, render dispatch and loader cache hits
//   - [slog.LevelInfo]: URL loads started by LoadImagePipe
//   - [slog.LevelWarn]: intermediate surfaces that failed to close
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silentLogger
	}
	activeLogger.Store(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	return activeLogger.Load()
}
