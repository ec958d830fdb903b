package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

// NewLogger returns a colored debug logger in development and a JSON info
// logger otherwise. When LOG_FILE is set, entries are also written to a
// rotating file.
func NewLogger() (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if Development() {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	filename, ok := os.LookupEnv("LOG_FILE")
	if !ok || filename == "" {
		return log, nil
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   filename,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Level:      log.GetLevel(),
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open log file %s: %w", filename, err)
	}
	log.AddHook(hook)
	return log, nil
}
