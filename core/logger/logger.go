package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "06-01-02 15:04:05"

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

type sink struct {
	ws      zapcore.WriteSyncer
	colored bool
}

type ZapLogger struct {
	mu      sync.RWMutex
	verbose bool
	level   zap.AtomicLevel
	sinks   []sink
	sugar   *zap.SugaredLogger
}

var globalLogger *ZapLogger

func init() {
	globalLogger = &ZapLogger{
		level: zap.NewAtomicLevelAt(zapcore.InfoLevel),
		sinks: []sink{{ws: zapcore.Lock(os.Stdout), colored: true}},
	}
	globalLogger.rebuild()
}

func encoderConfig(colored bool) zapcore.EncoderConfig {
	levelEncoder := zapcore.CapitalLevelEncoder
	if colored {
		levelEncoder = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeLevel:      levelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// rebuild must be called with mu held for writing (or during init).
func (zl *ZapLogger) rebuild() {
	cores := make([]zapcore.Core, 0, len(zl.sinks))
	for _, s := range zl.sinks {
		enc := zapcore.NewConsoleEncoder(encoderConfig(s.colored))
		cores = append(cores, zapcore.NewCore(enc, s.ws, zl.level))
	}
	zl.sugar = zap.New(zapcore.NewTee(cores...)).Sugar()
}

func (zl *ZapLogger) get() *zap.SugaredLogger {
	zl.mu.RLock()
	defer zl.mu.RUnlock()
	return zl.sugar
}

func SetVerbose(verbose bool) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.verbose = verbose
	if verbose {
		globalLogger.level.SetLevel(zapcore.DebugLevel)
	} else {
		globalLogger.level.SetLevel(zapcore.InfoLevel)
	}
}

func IsVerbose() bool {
	globalLogger.mu.RLock()
	defer globalLogger.mu.RUnlock()
	return globalLogger.verbose
}

// SetWriter replaces every output with writer. Output is uncoloured.
func SetWriter(writer io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.sinks = []sink{{ws: zapcore.AddSync(writer)}}
	globalLogger.rebuild()
}

// AddWriter tees output into writer in addition to the current outputs.
func AddWriter(writer io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.sinks = append(globalLogger.sinks, sink{ws: zapcore.AddSync(writer)})
	globalLogger.rebuild()
}

// SetLogFile appends all log output to the file at path.
func SetLogFile(path string) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	AddWriter(f)
	return func() error {
		_ = Sync()
		return f.Close()
	}, nil
}

func Sync() error {
	return globalLogger.get().Sync()
}

func Debug(format string, args ...interface{}) {
	globalLogger.get().Debugf(format, args...)
}

func Info(format string, args ...interface{}) {
	globalLogger.get().Infof(format, args...)
}

func Warn(format string, args ...interface{}) {
	globalLogger.get().Warnf(format, args...)
}

func Error(format string, args ...interface{}) {
	globalLogger.get().Errorf(format, args...)
}

func Fatal(format string, args ...interface{}) {
	globalLogger.get().Fatalf(format, args...)
}

func Debugw(msg string, keysAndValues ...interface{}) {
	globalLogger.get().Debugw(msg, keysAndValues...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	globalLogger.get().Infow(msg, keysAndValues...)
}

func GetLogFromLevel(level LogLevel) func(format string, args ...interface{}) {
	switch level {
	case DEBUG:
		return Debug
	case WARN:
		return Warn
	case ERROR:
		return Error
	case FATAL:
		return Fatal
	default:
		return Info
	}
}
