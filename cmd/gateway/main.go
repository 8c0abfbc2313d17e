package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ndrandal/quant-gateway/internal/config"
	"github.com/ndrandal/quant-gateway/internal/lifecycle"
	"github.com/ndrandal/quant-gateway/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	logger.Infow("quant-gateway starting", "mode", cfg.App.Mode, "allow_real_trading", cfg.App.AllowRealTrading)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infow("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	gw, err := lifecycle.Start(ctx, cfg, logger)
	if err != nil {
		logger.Fatalw("startup failed", "error", err)
	}

	<-ctx.Done()
	gw.Stop(context.Background())
	logger.Infow("quant-gateway stopped")
}
