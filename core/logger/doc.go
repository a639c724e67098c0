// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework used by the serve command.
//
// # Context Awareness
//
// Two helpers attach correlation fields:
//   - WithRayID extracts the RayID from a Fiber context so all logs of one request can be correlated.
//   - WithRun tags every line emitted during a reconciliation run with its run id.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Reconciliation started")
//
//	l := logger.WithRun(log, result.RunID)
//	l.Warn("Event log not found", zap.String("identifier", id))
package logger
