package logger

import (
	"github.com/rs/zerolog"
)

// ForComponent returns the global logger tagged with a component name
func ForComponent(component string) Logger {
	return GetLogger().WithField("component", component)
}

// OrDefault returns l, or the global logger when l is nil
func OrDefault(l Logger) Logger {
	if l == nil {
		return GetLogger()
	}
	return l
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() Logger {
	return &zerologLogger{logger: zerolog.Nop()}
}
