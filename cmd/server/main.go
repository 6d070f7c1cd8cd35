package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zl, err := logging.NewZap(cfg.Debug)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := logging.NewZapLogger(zl)
	defer func() { _ = logger.Sync() }()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, err.Error())
		return
	}

	app.Run(ctx)

}
