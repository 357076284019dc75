package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// CommandLogger adapts zerolog to the dispatcher.Logger interface. Shell
// command traffic is logged through it as JSON lines, apart from the slog
// application log.
type CommandLogger struct {
	logger zerolog.Logger
}

// NewCommandLogger writes JSON records at or above level to w.
func NewCommandLogger(w io.Writer, level string) *CommandLogger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return &CommandLogger{
		logger: zerolog.New(w).Level(lvl).With().Timestamp().Str("component", "dispatcher").Logger(),
	}
}

// Debug logs a debug message with optional key-value pairs.
func (l *CommandLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(toFields(keysAndValues)).Msg(msg)
}

// Info logs an info message with optional key-value pairs.
func (l *CommandLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info().Fields(toFields(keysAndValues)).Msg(msg)
}

// Error logs an error message with optional key-value pairs.
func (l *CommandLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error().Fields(toFields(keysAndValues)).Msg(msg)
}

// toFields converts key-value pairs to a map for zerolog. Non-string keys are skipped.
func toFields(keysAndValues []any) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
