// Package logging configures the shared application logger.
// Log output is rotated on disk via lumberjack and mirrored to stdout
// so container logs stay usable during development.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger = logrus.New()
var once sync.Once

// Init wires the shared logger to a rotating log file and stdout.
// Safe to call more than once; only the first call takes effect.
func Init(logFile string) {
	once.Do(func() {
		if logFile == "" {
			logFile = "logs/projectdesk.log"
		}

		if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
			logrus.Fatalf("failed to create log directory: %v", err)
		}

		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}

		Logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
		Logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
		Logger.SetLevel(logrus.InfoLevel)

		Logger.WithField("file", logFile).Info("logger initialized")
	})
}
