package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger(os.Stdout)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Init configures the process-wide logger. Unknown levels fall back to info.
func Init(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	log.WithField("level", lvl.String()).Info("logger initialized")
}

// SetOutput redirects log output. Tests use it to capture entries.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func Debug(msg string, fields map[string]any) {
	log.WithFields(fields).Debug(msg)
}

func Info(msg string, fields map[string]any) {
	log.WithFields(fields).Info(msg)
}

func Warn(msg string, fields map[string]any) {
	log.WithFields(fields).Warn(msg)
}

func Error(msg string, fields map[string]any) {
	log.WithFields(fields).Error(msg)
}

func Fatal(msg string, fields map[string]any) {
	log.WithFields(fields).Fatal(msg)
}
