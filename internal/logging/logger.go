// Package logging provides the shared zap logger of launchgeist. Level,
// console streams and a rotating log file are configured from the "log"
// block of the daemon or client config.
package logging

import (
	"io"
	"os"

	"github.com/mfulz/launchgeist/internal/configloader"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config represents the "log" block of a config file.
type Config struct {
	Level      string `mapstructure:"level"`       // "debug", "info", "warn", "error"
	ToStdout   bool   `mapstructure:"to_stdout"`   // Enable output to stdout
	ToStderr   bool   `mapstructure:"to_stderr"`   // Enable output to stderr
	ToFile     bool   `mapstructure:"to_file"`     // Enable output to file
	FilePath   string `mapstructure:"file"`        // Log file path, e.g. /var/log/launchgeist.log
	MaxSizeMB  int    `mapstructure:"max_size"`    // Max size before rotation (in MB)
	MaxAge     int    `mapstructure:"max_age"`     // Max age of logs (in days)
	MaxBackups int    `mapstructure:"max_backups"` // Number of rotated backups to keep
	Compress   bool   `mapstructure:"compress"`    // Gzip compress old log files
}

// DefaultConfig logs info and above to stderr.
func DefaultConfig() *Config {
	return &Config{Level: "info", ToStderr: true}
}

// Log is the globally accessible sugared logger instance.
var Log *zap.SugaredLogger

// Init rebuilds the global logger from the registered *Config.
func Init() error {
	cfg := configloader.MustGetConfig[*Config]()
	Log = New(cfg, os.Stdout, os.Stderr).Sugar()
	return nil
}

// Configure registers cfg and rebuilds the global logger from it.
func Configure(cfg *Config) error {
	configloader.StoreConfig(cfg)
	return Init()
}

// New builds a logger for cfg, writing console output to stdout and stderr.
func New(cfg *Config, stdout, stderr io.Writer) *zap.Logger {
	var cores []zapcore.Core

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel
	_ = level.Set(cfg.Level) // unknown levels stay at info

	if cfg.ToStdout {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(stdout), level))
	}
	if cfg.ToStderr {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(stderr), level))
	}
	if cfg.ToFile && cfg.FilePath != "" {
		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(encoder, writer, level))
	}

	if len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(stderr), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// Named returns a child of the global logger tagged with component.
func Named(component string) *zap.SugaredLogger {
	return Log.Named(component)
}

// Sync flushes buffered log entries.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func init() {
	configloader.RegisterConfig(DefaultConfig())
	_ = Init()
}
