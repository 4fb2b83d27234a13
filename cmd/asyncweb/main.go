package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	asyncweb "github.com/veteranandreich/Async-web-server"
	"github.com/veteranandreich/Async-web-server/internal/logging"
)

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}

		fmt.Fprintln(os.Stderr, "asyncweb:", err)
		os.Exit(2)
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "asyncweb:", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := asyncweb.New(cfg, logger).
		NotifyOnStop(func() {
			logger.Info().Msg("stopped")
		})

	go func() {
		<-ctx.Done()
		app.Stop()
	}()

	err = app.Serve()
	_ = closer.Close()

	if err != nil {
		fmt.Fprintln(os.Stderr, "asyncweb:", err)
		os.Exit(1)
	}
}
