// Command courier runs the in-process agent message broker behind the HTTP
// application server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casualjim/courier/config"
	"github.com/casualjim/courier/httpapi"
	"github.com/casualjim/courier/pkg/slogx"
	_ "github.com/joho/godotenv/autoload"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelDebug}),
	))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slogx.Error(err))
		os.Exit(1)
	}

	srv, err := httpapi.New(cfg, slog.Default())
	if err != nil {
		slog.Error("failed to wire the broker", slogx.Error(err))
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		slog.Error("server exited", slogx.Error(err))
		os.Exit(1)
	}
}
