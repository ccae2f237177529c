package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cinelab/cinetix/internal/cinema"
	"github.com/cinelab/cinetix/internal/clock"
	"github.com/cinelab/cinetix/internal/config"
	"github.com/cinelab/cinetix/internal/service"
	"github.com/cinelab/cinetix/internal/store/jsonstore"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	controller *cinema.Controller
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize the flat-file store
	store := jsonstore.New(cfg.DataDir)

	// Initialize services
	services := service.NewServices(store, service.Config{
		SeatsPerRow: cfg.SeatsPerRow,
		Clock:       clock.System(),
		Logger:      logger,
	})

	controller := cinema.New(services, logger)

	return &App{
		cfg:        cfg,
		logger:     logger,
		controller: controller,
	}, nil
}

func (a *App) Controller() *cinema.Controller {
	return a.controller
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a.logger.Info("starting cinetix", "data_dir", a.cfg.DataDir, "seats_per_row", a.cfg.SeatsPerRow)

	if err := a.controller.Load(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	a.logger.Info("shutting down")

	return nil
}
