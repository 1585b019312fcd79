package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func Init() {
	log = logrus.New()
	log.SetOutput(os.Stdout)

	if os.Getenv("ENVIRONMENT") == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		log.SetLevel(logrus.DebugLevel)
	}
}

// get returns the configured logger, falling back to the logrus default
// so package-level helpers stay safe in tests that skip Init.
func get() *logrus.Logger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}

func Info(args ...interface{}) {
	get().Info(args...)
}

func Error(args ...interface{}) {
	get().Error(args...)
}

func Debug(args ...interface{}) {
	get().Debug(args...)
}

func Warn(args ...interface{}) {
	get().Warn(args...)
}

func Fatal(args ...interface{}) {
	get().Fatal(args...)
}

// WithFields attaches structured context to a log entry.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return get().WithFields(logrus.Fields(fields))
}
