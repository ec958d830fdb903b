package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/maze-solver/internal/app"
	"github.com/vancomm/maze-solver/internal/config"
	"github.com/vancomm/maze-solver/internal/maze"
)

var log = logrus.New()

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if err := config.LoadEnv(); err != nil {
		log.Fatal("unable to load .env: ", err)
	}
	logger, err := config.NewLogger()
	if err != nil {
		log.Fatal("unable to set up logging: ", err)
	}
	log = logger
	maze.Log = logger

	log.WithField("development", config.Development()).Info("starting up")

	if err := app.New(log).Start(ctx); err != nil {
		log.Fatal("exit reason: ", err)
	}
}
