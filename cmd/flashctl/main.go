package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/flashdeck/internal/ctl"
	"github.com/dmitrijs2005/flashdeck/internal/logging"
	"github.com/dmitrijs2005/flashdeck/internal/server"
	"github.com/dmitrijs2005/flashdeck/internal/server/config"
	"github.com/dmitrijs2005/flashdeck/internal/server/services"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.LogBackend, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	rm, err := server.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer rm.Close()

	if err := rm.RunMigrations(ctx); err != nil {
		log.Fatalf("%v", err)
	}

	coordinator := services.NewCoordinator(rm, logger)
	app := ctl.NewApp(services.NewMaintenanceService(rm, coordinator, logger), services.NewImageService(cfg), os.Stdout)

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Printf("%v", err)
		rm.Close()
		os.Exit(1)
	}

}
