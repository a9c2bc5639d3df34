package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

// InitLogger sets up the info (stdout) and error (stderr) loggers. format
// "json" switches both to the JSON formatter.
func InitLogger(level, format string) {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()

	InfoLogger.SetOutput(os.Stdout)
	ErrorLogger.SetOutput(os.Stderr)

	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if format == "json" {
		formatter = &logrus.JSONFormatter{}
	}
	InfoLogger.SetFormatter(formatter)
	ErrorLogger.SetFormatter(formatter)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	InfoLogger.SetLevel(lvl)
	ErrorLogger.SetLevel(logrus.ErrorLevel)
}

// Loggers are nil until InitLogger runs; tests and library callers go
// through these helpers instead.
func Info() *logrus.Logger {
	if InfoLogger == nil {
		InitLogger("info", "text")
	}
	return InfoLogger
}

func Error() *logrus.Logger {
	if ErrorLogger == nil {
		InitLogger("info", "text")
	}
	return ErrorLogger
}
