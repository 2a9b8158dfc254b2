package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// AppLogPrefix names the dated application log, e.g. musicmanager-20240101.log
	AppLogPrefix = "musicmanager"
	// ToolLogPrefix names the dated log that receives raw yt-dlp/ffmpeg output
	ToolLogPrefix = "tools"

	dateLayout = "20060102"
)

// Config represents logger configuration
type Config struct {
	Level   string // debug, info, warn, error
	Format  string // json, console
	LogsDir string // directory for dated log files; empty disables the file output
}

// New creates a logger that writes to stderr and, when LogsDir is set, to
// today's application log file in JSON
func New(config Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var consoleEncoder zapcore.Encoder
	if config.Format == "json" {
		consoleEncoder = zapcore.NewJSONEncoder(fileEncoderConfig())
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		consoleEncoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stderr), level),
	}

	if config.LogsDir != "" {
		file, err := OpenDated(config.LogsDir, AppLogPrefix, time.Now())
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig()), zapcore.AddSync(file), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func fileEncoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return encoderConfig
}

// DatedPath returns the log file path for a prefix on the given day
func DatedPath(logsDir, prefix string, day time.Time) string {
	return filepath.Join(logsDir, fmt.Sprintf("%s-%s.log", prefix, day.Format(dateLayout)))
}

// OpenDated opens (creating if needed) the dated log file for a prefix in append mode
func OpenDated(logsDir, prefix string, day time.Time) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	return os.OpenFile(DatedPath(logsDir, prefix, day), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// Prune removes dated log files older than maxAge. It returns the removed paths.
func Prune(logsDir string, maxAge time.Duration, now time.Time) ([]string, error) {
	if maxAge <= 0 {
		return nil, nil
	}

	entries, err := os.ReadDir(logsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cutoff := now.Add(-maxAge)
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		day, ok := logDate(entry.Name())
		if !ok || !day.Before(cutoff) {
			continue
		}
		path := filepath.Join(logsDir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, err
		}
		removed = append(removed, path)
	}

	return removed, nil
}

// logDate parses the date out of "<prefix>-YYYYMMDD.log" for our prefixes only
func logDate(name string) (time.Time, bool) {
	for _, prefix := range []string{AppLogPrefix, ToolLogPrefix} {
		rest, ok := strings.CutPrefix(name, prefix+"-")
		if !ok {
			continue
		}
		stamp, ok := strings.CutSuffix(rest, ".log")
		if !ok {
			continue
		}
		day, err := time.ParseInLocation(dateLayout, stamp, time.Local)
		if err != nil {
			return time.Time{}, false
		}
		return day, true
	}
	return time.Time{}, false
}
