package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/winnyineza/choir-tickets/internal/conf"
)

func main() {
	confPath := flag.String("c", "internal/conf/config.yaml", "path to config file")
	flag.Parse()

	appConfig, err := conf.NewConfig(*confPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	app, cleanup, err := InitializeConsumerApp(appConfig)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize consumer app: %v", err))
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.logger.Info("Starting consumer application")
	if err := app.Run(ctx); err != nil {
		app.logger.Error("Consumer application exited with error", zap.Error(err))
	}

	app.logger.Info("Consumer application shut down gracefully")
}
