package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/maze-solver/internal/config"
	"github.com/vancomm/maze-solver/internal/database"
)

var (
	log = logrus.New()

	down bool
)

func init() {
	flag.BoolVar(&down, "down", false, "roll back every migration instead of applying them")
}

func main() {
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		log.Fatal("unable to load .env: ", err)
	}
	logger, err := config.NewLogger()
	if err != nil {
		log.Fatal("unable to set up logging: ", err)
	}
	log = logger

	url, err := config.DbURL()
	if err != nil {
		log.Fatal(err)
	}

	migrator, err := database.Migrate(url, database.Migrations)
	if err != nil {
		log.Fatal(err)
	}
	defer migrator.Close()

	if down {
		if err := migrator.Down(); err != nil {
			log.Fatal("failed to roll back: ", err)
		}
		log.Info("rolled back every migration")
		return
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		log.WithError(err).Error("failed to check migration version")
		return
	}
	log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("migration successful")
}
