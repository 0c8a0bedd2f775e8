// logger.go
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. Production writes JSON, everything else
// writes human readable text. An unknown level falls back to info.
func New(environment, level string) *logrus.Logger {
	return newWithOutput(os.Stdout, environment, level)
}

func newWithOutput(out io.Writer, environment, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	if environment == "production" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyMsg: "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		l.WithField("level", level).Warn("unknown log level, using info")
	}
	l.SetLevel(lvl)
	return l
}
