// Package logger provides a structured logging interface for favdupes.
//
// It wraps zerolog behind a small Logger interface:
//   - levels debug, info, warn and error
//   - child loggers via WithField, WithFields and WithError
//   - pretty console output on stderr, or JSON / file output
//   - a global logger for command wiring
//   - TestLogger, which records messages for assertions
//
// Usage:
//
//	err := logger.Initialize(&cfg.Logging)
//	logger.WithField("screen_name", "jack").Info("fetching favorites")
//
//	log := logger.ForComponent("dupes")
//	log.InfoWithFields("duplicates found", map[string]interface{}{
//	    "groups": 3,
//	    "extra":  5,
//	})
package logger
