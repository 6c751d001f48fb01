package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openduty/console/internal/app"
	"github.com/openduty/console/internal/config"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("CONSOLE_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "config error:", err.Error())
		os.Exit(2)
	}

	a, err := app.New(cfg)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "init failed:", err.Error())
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "run failed:", err.Error())
			os.Exit(1)
		}
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.Shutdown(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "shutdown failed:", err.Error())
		os.Exit(1)
	}
}
