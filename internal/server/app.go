// Package server wires the flashdeck HTTP API: it opens the configured
// storage backend, runs migrations, optionally seeds default decks and
// serves requests until an OS signal asks it to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/logging"
	"github.com/dmitrijs2005/flashdeck/internal/server/auth"
	"github.com/dmitrijs2005/flashdeck/internal/server/config"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/flashdeck/internal/server/rest"
	"github.com/dmitrijs2005/flashdeck/internal/server/services"
)

type App struct {
	config             *config.Config
	logger             logging.Logger
	repomanager        repomanager.RepositoryManager
	userService        *services.UserService
	deckService        *services.DeckService
	flashcardService   *services.FlashcardService
	imageService       *services.ImageService
	maintenanceService *services.MaintenanceService
}

// OpenStorage opens the repository manager selected by c.StorageDriver.
func OpenStorage(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.StorageDriver {
	case config.StoragePostgres:
		return repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	case config.StorageBadger:
		return repomanager.OpenBadger(c.BadgerPath)
	}
	return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, os.Stdout)
	if err != nil {
		return nil, err
	}

	rm, err := OpenStorage(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return newApp(c, logger, rm), nil
}

func newApp(c *config.Config, logger logging.Logger, rm repomanager.RepositoryManager) *App {
	coordinator := services.NewCoordinator(rm, logger)
	tokens := auth.NewJWTIssuer(c.SecretKey, c.TokenValidityDuration)

	return &App{
		config:             c,
		logger:             logger,
		repomanager:        rm,
		userService:        services.NewUserService(rm, auth.NewBcryptHasher(c.BcryptCost), tokens, logger),
		deckService:        services.NewDeckService(rm, coordinator, logger),
		flashcardService:   services.NewFlashcardService(rm, coordinator, logger),
		imageService:       services.NewImageService(c),
		maintenanceService: services.NewMaintenanceService(rm, coordinator, logger),
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// prepare migrates the store and, when configured, seeds default decks.
// An already seeded store is not an error.
func (app *App) prepare(ctx context.Context) error {
	if err := app.repomanager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	if !app.config.SeedOnStart {
		return nil
	}

	_, err := app.maintenanceService.Seed(ctx, services.DefaultSeedDecks())
	if err != nil && !errors.Is(err, common.ErrorAlreadySeeded) {
		return fmt.Errorf("seed error: %w", err)
	}
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.deckService, app.flashcardService, app.imageService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageDriver)

	defer func() {
		if err := app.repomanager.Close(); err != nil {
			app.logger.Error(context.Background(), "error closing storage", "error", err)
		}
	}()

	if err := app.prepare(ctx); err != nil {
		return err
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return nil
}
