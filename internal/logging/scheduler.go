package logging

import "github.com/rs/zerolog"

// SchedulerLogger adapts zerolog.Logger to the compute.Logger interface.
type SchedulerLogger struct {
	logger zerolog.Logger
}

// NewSchedulerLogger creates a new SchedulerLogger wrapping a zerolog.Logger.
func NewSchedulerLogger(logger zerolog.Logger) *SchedulerLogger {
	return &SchedulerLogger{logger: logger}
}

// Debug logs a debug message with optional key-value pairs.
func (l *SchedulerLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(toFields(keysAndValues)).Msg(msg)
}

// Info logs an info message with optional key-value pairs.
func (l *SchedulerLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info().Fields(toFields(keysAndValues)).Msg(msg)
}

// Error logs an error message with optional key-value pairs.
func (l *SchedulerLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error().Fields(toFields(keysAndValues)).Msg(msg)
}

// toFields converts key-value pairs to a map for zerolog.
func toFields(keysAndValues []any) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
