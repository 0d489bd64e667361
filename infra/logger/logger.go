package logger

import corelogger "github.com/kilianp07/homeenergy/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)        {}
func (NopLogger) Infof(string, ...any)         {}
func (NopLogger) Warnf(string, ...any)         {}
func (NopLogger) Errorf(string, ...any)        {}
func (NopLogger) Infow(string, map[string]any) {}
func (NopLogger) Warnw(string, map[string]any) {}

// New returns a Logger tagged with the given component. Output settings come
// from the last call to Setup, or stdout JSON at info level before that.
func New(component string) Logger {
	return NewZerologLogger(component)
}
