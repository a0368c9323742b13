package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medstock/global"
	"medstock/initialize"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to YAML config file")
	)
	flag.Parse()

	app, err := initialize.Build(*configPath)
	if err != nil {
		global.Logger.Fatal().Err(err).Msg("startup failed")
	}

	app.Scheduler.Start()
	defer app.Scheduler.Stop()
	if app.Watcher != nil {
		defer app.Watcher.Close()
	}

	addr := net.JoinHostPort(app.Cfg.HTTP.Host, fmt.Sprintf("%d", app.Cfg.HTTP.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		global.Logger.Info().Str("addr", addr).Str("mode", app.Cfg.Mode).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			global.Logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		global.Logger.Error().Err(err).Msg("shutdown")
	}
	global.Logger.Info().Msg("stopped")
}
