package logger

import (
	stdlog "log"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
	redact        *redactor
}

// Options tunes a logger beyond its mode. Zero values keep mode defaults.
type Options struct {
	Mode  string
	Level string
	// Redact replaces secrets and emails with a marker and hashes user ids.
	Redact   bool
	HashSalt string
}

// New builds a logger for mode: "production", "test" or anything else for
// development output.
func New(mode string) (*Logger, error) {
	return NewWithOptions(Options{Mode: mode})
}

func NewWithOptions(opts Options) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(opts.Mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	case "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	if lvl := strings.TrimSpace(opts.Level); lvl != "" {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(lvl)); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(l)
		}
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return FromZap(z, opts), nil
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger, opts Options) *Logger {
	l := &Logger{SugaredLogger: z.Sugar()}
	if opts.Redact {
		l.redact = &redactor{salt: opts.HashSalt}
	}
	return l
}

func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.SugaredLogger.Debugw(msg, l.redact.apply(kv)...)
}

func (l *Logger) Info(msg string, kv ...interface{}) {
	l.SugaredLogger.Infow(msg, l.redact.apply(kv)...)
}

func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.SugaredLogger.Warnw(msg, l.redact.apply(kv)...)
}

func (l *Logger) Error(msg string, kv ...interface{}) {
	l.SugaredLogger.Errorw(msg, l.redact.apply(kv)...)
}

func (l *Logger) Fatal(msg string, kv ...interface{}) {
	l.SugaredLogger.Fatalw(msg, l.redact.apply(kv)...)
}

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.redact.apply(kv)...), redact: l.redact}
}

// StdLog adapts the logger for libraries that want a Printf writer (gorm).
func (l *Logger) StdLog() *stdlog.Logger {
	std, err := zap.NewStdLogAt(l.SugaredLogger.Desugar(), zapcore.WarnLevel)
	if err != nil {
		return zap.NewStdLog(l.SugaredLogger.Desugar())
	}
	return std
}
