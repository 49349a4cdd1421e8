package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Logger wraps a zap SugaredLogger. The TUI owns the terminal, so interactive
// sessions log to .hookclimb/logs/hookclimb.log instead of stderr.
type Logger struct {
	*zap.SugaredLogger
}

// Options selects the encoder and destination.
type Options struct {
	// Debug switches to the human-readable development encoder at debug level.
	Debug bool
	// Path, when set, appends log lines to this file instead of stderr.
	Path string
}

// New builds a logger, creating the log directory when a file path is given.
func New(opts Options) (*Logger, error) {
	var cfg zap.Config
	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "time"
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.Encoding = "json"
	}
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.CallerKey = "caller"

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("logging: ensure log dir: %w", err)
		}
		cfg.OutputPaths = []string{opts.Path}
		cfg.ErrorOutputPaths = []string{opts.Path}
	}

	logger, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return &Logger{logger.Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

// Named returns a child logger tagged with a component name.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return Nop()
	}
	return &Logger{l.SugaredLogger.Named(name)}
}

// Close flushes buffered entries.
func (l *Logger) Close() error {
	if l == nil || l.SugaredLogger == nil {
		return nil
	}
	// Sync on a terminal stderr returns EINVAL on some platforms.
	_ = l.Sync()
	return nil
}
