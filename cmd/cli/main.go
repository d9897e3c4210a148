package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/prolens/internal/buildinfo"
	"github.com/dmitrijs2005/prolens/internal/client/cli"
	"github.com/dmitrijs2005/prolens/internal/client/config"
	"github.com/dmitrijs2005/prolens/internal/logging"
	"github.com/dmitrijs2005/prolens/internal/metrics"
)

func main() {

	buildinfo.Print(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig(os.Args[1:])
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	go func() {
		if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
			logger.Error(ctx, "metrics server stopped", "error", err)
		}
	}()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
