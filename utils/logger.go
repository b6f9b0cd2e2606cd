package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide structured logger
var Logger = logrus.New()

// InitLogger configures Logger for the given level and environment.
// Production logs are JSON; everything else uses the text formatter.
func InitLogger(level, env string) {
	Logger.SetReportCaller(true)
	Logger.SetOutput(os.Stdout)

	callerPrettyfier := func(f *runtime.Frame) (string, string) {
		return "", filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
	}

	if env == "production" {
		Logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  "2006-01-02T15:04:05Z07:00",
			CallerPrettyfier: callerPrettyfier,
		})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			CallerPrettyfier: callerPrettyfier,
		})
	}

	Logger.SetLevel(ParseLogLevel(level))
}

// ParseLogLevel maps a LOG_LEVEL value to a logrus level, defaulting to info
func ParseLogLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
