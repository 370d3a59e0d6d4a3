package core

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// LogLevel mirrors the level type of the underlying logger so callers do not
// need to import it directly.
type LogLevel = log.Level

const (
	DebugLevel LogLevel = log.DebugLevel
	InfoLevel  LogLevel = log.InfoLevel
	WarnLevel  LogLevel = log.WarnLevel
	ErrorLevel LogLevel = log.ErrorLevel
	FatalLevel LogLevel = log.FatalLevel
)

// LogLevelEnv is read once at startup; an explicit level from the
// configuration or the command line wins over it.
const LogLevelEnv = "SEGFAULT_LOG"

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	if singleton == nil {
		once.Do(
			func() {
				l := log.NewWithOptions(os.Stderr, log.Options{
					ReportCaller:    true,
					ReportTimestamp: true,
					TimeFormat:      time.RFC3339,
					Prefix:          "segfault 🔧",
					CallerOffset:    1,
				})
				l.SetLevel(levelFromEnv(InfoLevel))
				singleton = &logger{l}
			})
	}
	return singleton
}

func levelFromEnv(fallback LogLevel) LogLevel {
	v := strings.TrimSpace(os.Getenv(LogLevelEnv))
	if v == "" {
		return fallback
	}
	lvl, err := ParseLogLevel(v)
	if err != nil {
		return fallback
	}
	return lvl
}

// ParseLogLevel accepts debug, info, warn, error and fatal (case-insensitive).
func ParseLogLevel(s string) (LogLevel, error) {
	return log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
}

func LogSetLevel(level LogLevel) {
	getLogger().SetLevel(level)
}

func LogGetLevel() LogLevel {
	return getLogger().GetLevel()
}

func LogSetOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

// LogWithRunID tags every subsequent line with the id of the current
// bootstrap run.
func LogWithRunID(id string) {
	l := getLogger()
	l.Logger = l.With("run", id)
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
