package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/maze-solver/internal/config"
	"github.com/vancomm/maze-solver/internal/database"
	"github.com/vancomm/maze-solver/internal/middleware"
	"github.com/vancomm/maze-solver/internal/repository"
)

type App struct {
	log    *logrus.Logger
	router *http.ServeMux
	ws     *config.WebSocket
}

func New(log *logrus.Logger) *App {
	return &App{
		log:    log,
		router: http.NewServeMux(),
	}
}

// Handler wraps the router in the middleware stack and mounts it under
// APP_BASE_PATH.
func (a *App) Handler() http.Handler {
	var h http.Handler = a.router
	if base := strings.TrimSuffix(config.BasePath(), "/"); base != "" {
		h = http.StripPrefix(base, h)
	}
	return middleware.Wrap(h,
		middleware.Logging(a.log),
		middleware.Cors(),
	)
}

// Start serves until ctx is done, then shuts the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	db, migrator, err := database.ConnectAndMigrate(ctx, database.Migrations)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	defer db.Close()

	if version, dirty, err := migrator.Version(); err == nil {
		a.log.WithFields(logrus.Fields{
			"version": version,
			"dirty":   dirty,
		}).Info("database schema")
	}

	ws, err := config.NewWebSocket()
	if err != nil {
		return err
	}
	a.ws = ws

	a.loadRoutes(repository.New(db))

	addr := config.Port()
	server := &http.Server{
		Addr:    addr,
		Handler: a.Handler(),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	a.log.Infof("ready to serve @ %s", addr)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
