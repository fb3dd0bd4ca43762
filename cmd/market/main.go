// Command market is the terminal client for the campus secondhand
// marketplace: browse and manage listings, and chat with buyers and sellers
// over the backend's per-item rooms.
package main

import (
	"bufio"
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/campusmarket/market-client/internal/api"
	"github.com/campusmarket/market-client/internal/auth"
	"github.com/campusmarket/market-client/internal/chat"
	"github.com/campusmarket/market-client/internal/config"
	"github.com/campusmarket/market-client/internal/metrics"
	"github.com/campusmarket/market-client/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration failed", "err", err)
		os.Exit(1)
	}

	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	store, closeStore, err := newCredentialStore(cfg)
	if err != nil {
		logger.Error("credential store failed", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	client := api.New(api.Config{
		BaseURL:     cfg.APIURL,
		Credentials: store,
		Timeout:     cfg.HTTPTimeout,
		Logger:      logger,
	})

	display := newTermDisplay(os.Stdout)
	session := chat.NewSession(chat.SessionConfig{
		Dial:    chat.WSDialer(cfg.WSURL),
		History: client,
		Display: display,
		Logger:  logger,
	})

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		logger:  logger,
		client:  client,
		store:   store,
		session: session,
		display: display,
		in:      bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
	}
	if err := a.run(ctx); err != nil {
		logger.Error("terminal session failed", "err", err)
		os.Exit(1)
	}
}

// newCredentialStore picks Redis-backed storage when an address is
// configured, falling back to the per-user credential file.
func newCredentialStore(cfg config.Config) (auth.Store, func(), error) {
	if cfg.RedisAddr != "" {
		store, err := auth.NewRedisStore(cfg.RedisAddr, cfg.Profile)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
	return auth.NewFileStore(cfg.CredentialsPath), func() {}, nil
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logger.Info("metrics endpoint up", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics endpoint failed", "err", err)
	}
}
