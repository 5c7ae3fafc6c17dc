package common

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lni/dragonboat/v4/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerNames lists the named loggers used across itemnav.
var LoggerNames = []string{"cmd", "db", "store", "search", "nav", "web"}

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// itemnavLogger implements the ILogger interface on top of a zap logger
type itemnavLogger struct {
	name   string
	level  logger.LogLevel
	sugar  *zap.SugaredLogger
	levelM sync.RWMutex
}

func (l *itemnavLogger) SetLevel(level logger.LogLevel) {
	l.levelM.Lock()
	l.level = level
	l.levelM.Unlock()
}

func (l *itemnavLogger) enabled(level logger.LogLevel) bool {
	l.levelM.RLock()
	defer l.levelM.RUnlock()
	return l.level >= level
}

func (l *itemnavLogger) Debugf(format string, args ...interface{}) {
	if l.enabled(logger.DEBUG) {
		l.sugar.Debugf(format, args...)
	}
}

func (l *itemnavLogger) Infof(format string, args ...interface{}) {
	if l.enabled(logger.INFO) {
		l.sugar.Infof(format, args...)
	}
}

func (l *itemnavLogger) Warningf(format string, args ...interface{}) {
	if l.enabled(logger.WARNING) {
		l.sugar.Warnf(format, args...)
	}
}

func (l *itemnavLogger) Errorf(format string, args ...interface{}) {
	if l.enabled(logger.ERROR) {
		l.sugar.Errorf(format, args...)
	}
}

func (l *itemnavLogger) Panicf(format string, args ...interface{}) {
	if l.enabled(logger.CRITICAL) {
		l.sugar.Panicf(format, args...)
	}
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

var (
	baseLogger     *zap.Logger
	baseLoggerOnce sync.Once
	factoryOnce    sync.Once
)

// base returns the shared zap logger, building it on first use.
// The zap level is left at debug; filtering happens per named logger.
func base() *zap.Logger {
	baseLoggerOnce.Do(func() {
		config := zap.NewProductionConfig()
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		config.OutputPaths = []string{"stdout"}
		built, err := config.Build()
		if err != nil {
			built = zap.NewNop()
		}
		baseLogger = built
	})
	return baseLogger
}

// CreateLogger implements the logger.Factory signature
func CreateLogger(pkgName string) logger.ILogger {
	return &itemnavLogger{
		name:  pkgName,
		level: logger.INFO,
		sugar: base().Named(pkgName).Sugar(),
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers installs the zap backed factory (once per process) and sets
// the level of every itemnav logger.
func InitLoggers(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	factoryOnce.Do(func() {
		logger.SetLoggerFactory(CreateLogger)
	})

	for _, name := range LoggerNames {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	if baseLogger != nil {
		_ = baseLogger.Sync()
	}
}

// PrintfAdapter exposes a dragonboat logger through the Printf method
// expected by rcrowley/go-metrics reporters.
type PrintfAdapter struct {
	Logger logger.ILogger
}

func (p PrintfAdapter) Printf(format string, v ...interface{}) {
	p.Logger.Infof(format, v...)
}
