package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brewks/ga-maintenance/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base    *zap.Logger
	sugar   *zap.SugaredLogger
	logFile *os.File
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// LogLevel constants
const (
	DEBUG = "debug"
	INFO  = "info"
	WARN  = "warn"
	ERROR = "error"
)

// ParseLevel maps a configured level name to a zap level, defaulting to info
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder(format string) zapcore.Encoder {
	if format == "json" {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "timestamp"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(encCfg)
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	return zapcore.NewConsoleEncoder(encCfg)
}

// Init initializes the logging system using configuration
func Init(cfg *config.Config) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	logPath := cfg.Logging.LogFile
	if !filepath.IsAbs(logPath) {
		logPath = filepath.Join(cwd, logPath)
	}

	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	level.SetLevel(ParseLevel(cfg.Logging.LogLevel))
	encoder := newEncoder(cfg.Logging.Format)

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.AddSync(logFile), level)}
	if cfg.Logging.LogToConsole {
		cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.Lock(os.Stdout), level))
	}

	base = zap.New(zapcore.NewTee(cores...))
	sugar = base.Sugar()

	Printf("=== Session started at %s ===", time.Now().Format("2006-01-02 15:04:05"))
	base.Info("logging configured",
		zap.String("log_file", logPath),
		zap.String("log_level", level.Level().String()),
		zap.Bool("log_to_console", cfg.Logging.LogToConsole),
	)
	LogDivider()

	return nil
}

// Close flushes and closes the log file
func Close() error {
	if logFile == nil {
		return nil
	}
	LogDivider()
	Printf("=== Session ended at %s ===", time.Now().Format("2006-01-02 15:04:05"))
	_ = base.Sync()

	err := logFile.Close()
	logFile = nil
	base = nil
	sugar = nil
	return err
}

// L returns the structured logger for packages that take one as a dependency
func L() *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base
}

func trim(format string) string {
	return strings.TrimRight(format, "\n")
}

// Printf prints formatted text to log (respects log level)
func Printf(format string, v ...interface{}) {
	if sugar != nil {
		sugar.Infof(trim(format), v...)
	} else if level.Enabled(zapcore.InfoLevel) {
		fmt.Printf(format, v...)
	}
}

// Println prints a line to log (respects log level)
func Println(v ...interface{}) {
	if sugar != nil {
		sugar.Info(strings.TrimRight(fmt.Sprintln(v...), "\n"))
	} else if level.Enabled(zapcore.InfoLevel) {
		fmt.Println(v...)
	}
}

// Debugf prints formatted debug text
func Debugf(format string, v ...interface{}) {
	if sugar != nil {
		sugar.Debugf(trim(format), v...)
	} else if level.Enabled(zapcore.DebugLevel) {
		fmt.Printf("DEBUG: "+format, v...)
	}
}

// Warnf prints formatted warning text
func Warnf(format string, v ...interface{}) {
	if sugar != nil {
		sugar.Warnf(trim(format), v...)
	} else if level.Enabled(zapcore.WarnLevel) {
		fmt.Printf("WARN: "+format, v...)
	}
}

// Errorf prints formatted error text
func Errorf(format string, v ...interface{}) {
	if sugar != nil {
		sugar.Errorf(trim(format), v...)
	} else {
		fmt.Fprintf(os.Stderr, "ERROR: "+format, v...)
	}
}

// Fatalf prints formatted fatal error, closes the log and exits
func Fatalf(format string, v ...interface{}) {
	if sugar != nil {
		sugar.Errorf("FATAL: "+trim(format), v...)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: "+format+"\n", v...)
	}
	_ = Close()
	os.Exit(1)
}

// LogCommand logs the command being executed
func LogCommand(command string, args []string) {
	if len(args) > 1 {
		Printf("Command executed: %s %v", command, args[1:])
		return
	}
	Printf("Command executed: %s", command)
}

// LogDivider prints a divider line for better log organization
func LogDivider() {
	Println("------------------------------------------------------------")
}

// LogResult logs a result with status
func LogResult(operation string, success bool, details string) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	if details != "" {
		Printf("%s: %s - %s", operation, status, details)
		return
	}
	Printf("%s: %s", operation, status)
}

// LogProgress logs progress information
func LogProgress(current, total int, item string) {
	Printf("Progress: [%d/%d] %s", current, total, item)
}

// GetLogFileName returns the current log file name
func GetLogFileName() string {
	if logFile != nil {
		return logFile.Name()
	}
	return "result.log"
}
