package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the sugared logger used by the HTTP layer. Debug, Info, Warn, Error
// and Fatal take a message followed by alternating keys and values, which become
// structured fields; use the embedded Infof family for printf-style text.
type Logger struct {
	*zap.SugaredLogger
}

// New builds a JSON logger on stdout with ISO8601 timestamps. The development
// environment logs at debug level, everything else at info.
func New(environment string) *Logger {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(levelFor(environment))

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	return FromZap(logger)
}

// FromZap wraps an existing zap logger. Caller reporting skips the wrapper methods.
func FromZap(logger *zap.Logger) *Logger {
	return &Logger{
		SugaredLogger: logger.WithOptions(zap.AddCallerSkip(1)).Sugar(),
	}
}

// Zap returns the structured logger handed to services
func (l *Logger) Zap() *zap.Logger {
	return l.SugaredLogger.Desugar().WithOptions(zap.AddCallerSkip(-1))
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With("request_id", requestID),
	}
}

func (l *Logger) WithUserID(userID int64) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With("user_id", userID),
	}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, keysAndValues...)
}

func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, keysAndValues...)
}

func levelFor(environment string) zapcore.Level {
	if environment == "development" {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
