package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvVar selects the development logger when set to "dev".
const EnvVar = "PDRATIO_ENV"

// New builds the process logger. Development mode logs human-readable
// output at debug level; otherwise JSON at info level. Both write to stderr
// so estimates printed on stdout stay machine-readable.
func New() *zap.SugaredLogger {
	return NewWithLevel(levelFromEnv())
}

func NewWithLevel(level zapcore.Level) *zap.SugaredLogger {
	var cfg zap.Config
	if strings.ToLower(os.Getenv(EnvVar)) == "dev" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.InitialFields = map[string]interface{}{EnvVar: os.Getenv(EnvVar)}
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		panic(fmt.Errorf("failed to initialize logger: %w", err))
	}
	return logger.Sugar()
}

// Nop discards everything. Library code defaults to it.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func levelFromEnv() zapcore.Level {
	if strings.ToLower(os.Getenv(EnvVar)) == "dev" {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

// ParseLevel maps a flag value such as "debug" or "warn" to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return l, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}
