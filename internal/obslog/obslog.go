package obslog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// globalLogger is a no-op until Init runs.
var globalLogger = zap.NewNop()

// L returns the process-wide logger.
func L() *zap.Logger { return globalLogger }

// Options describes where and how log lines are written. The terminal UI owns
// stdout, so console output is off unless asked for.
type Options struct {
	Level      zapcore.Level
	Format     string // legacy, json or console
	ToConsole  bool
	ToFile     bool
	FilePath   string
	ShowCaller bool
}

// OptionsFromEnv reads LOG_* variables.
func OptionsFromEnv() Options {
	format := strings.ToLower(strings.TrimSpace(getenvDefault("LOG_FORMAT", "legacy")))
	if format != "legacy" && format != "json" && format != "console" {
		format = "legacy"
	}
	return Options{
		Level:      parseLevel(getenvDefault("LOG_LEVEL", "info")),
		Format:     format,
		ToConsole:  strings.EqualFold(getenvDefault("LOG_TO_CONSOLE", "false"), "true"),
		ToFile:     strings.EqualFold(getenvDefault("LOG_TO_FILE", "true"), "true"),
		FilePath:   strings.TrimSpace(getenvDefault("LOG_FILE", filepath.Join("logs", "connect4.log"))),
		ShowCaller: strings.EqualFold(getenvDefault("LOG_CALLER", "false"), "true"),
	}
}

// InitFromEnv installs a logger built from OptionsFromEnv.
func InitFromEnv() error {
	return Init(OptionsFromEnv())
}

// Init builds the global logger. With neither sink enabled the logger stays
// silent.
func Init(opts Options) error {
	var cores []zapcore.Core

	if opts.ToConsole {
		cores = append(cores, zapcore.NewCore(encoder(opts.Format), zapcore.AddSync(os.Stderr), opts.Level))
	}
	if opts.ToFile && opts.FilePath != "" {
		if err := ensureDir(filepath.Dir(opts.FilePath)); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder(opts.Format), zapcore.AddSync(f), opts.Level))
	}
	if len(cores) == 0 {
		globalLogger = zap.NewNop()
		return nil
	}

	logger := zap.New(zapcore.NewTee(cores...))
	if opts.ShowCaller || opts.Format == "legacy" {
		logger = logger.WithOptions(zap.AddCaller())
	}
	globalLogger = logger.WithOptions(zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

// Sync flushes buffered entries; call before exit.
func Sync() {
	_ = globalLogger.Sync()
}

func encoder(format string) zapcore.Encoder {
	switch format {
	case "json":
		return zapcore.NewJSONEncoder(jsonEncoderConfig())
	case "console":
		return zapcore.NewConsoleEncoder(consoleEncoderConfig())
	default:
		return zapcore.NewConsoleEncoder(legacyEncoderConfig())
	}
}

func ensureDir(dir string) error {
	if strings.TrimSpace(dir) == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// legacyEncoderConfig writes "time | LEVEL | msg" lines.
func legacyEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.ConsoleSeparator = " | "
	return cfg
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}
