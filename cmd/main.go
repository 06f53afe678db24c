package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountservice "github.com/Peeetk/shop-backend/account/service"
	"github.com/Peeetk/shop-backend/account/storage"
	"github.com/Peeetk/shop-backend/account/storage/jsonfile"
	"github.com/Peeetk/shop-backend/account/storage/postgres"
	"github.com/Peeetk/shop-backend/account/storage/sqlite"
	"github.com/Peeetk/shop-backend/internal/allowlist"
	"github.com/Peeetk/shop-backend/internal/checkout"
	"github.com/Peeetk/shop-backend/internal/config"
	"github.com/Peeetk/shop-backend/internal/logger"
	"github.com/Peeetk/shop-backend/internal/notifier"
	"github.com/Peeetk/shop-backend/internal/web"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/server.toml", "path to config file")
	flag.Parse()

	cfg, err := config.New(*configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Server.Debug)

	ctx := context.Background()

	store, err := newStorage(ctx, log, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorf("closing storage: %v", err)
		}
	}()

	allow, err := newAllowlist(cfg.Allowlist)
	if err != nil {
		return err
	}

	var notify notifier.Notifier
	if cfg.SMTP.Host != "" {
		notify, err = notifier.NewSMTP(log, cfg.SMTP)
		if err != nil {
			return err
		}
	} else {
		log.Warn("smtp is not configured, outgoing mail is disabled")
		notify = notifier.Noop{}
	}

	accounts, err := accountservice.New(log, cfg.Auth, store, allow, notify)
	if err != nil {
		return err
	}
	checkoutService := checkout.New(log, cfg.Stripe)

	server := web.New(log, cfg.Server, accounts, checkoutService)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-done
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Errorf("server shutdown: %v", err)
		}
	}()

	log.Infof("listening on %s:%d", cfg.Server.Host, cfg.Server.Port)
	return server.Serve()
}

func newStorage(ctx context.Context, log *logrus.Logger, cfg config.Storage) (storage.AccountStorage, error) {
	switch cfg.Backend {
	case "jsonfile":
		return jsonfile.New(log, cfg.JSONFile)
	case "sqlite", "":
		return sqlite.New(log, cfg.SqliteFile)
	case "postgres":
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		return postgres.New(ctx, log, cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func newAllowlist(cfg config.Allowlist) (allowlist.Provider, error) {
	timeout := 10 * time.Second
	if cfg.Timeout != "" {
		var err error
		timeout, err = time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, err
		}
	}
	switch cfg.Source {
	case "http", "":
		if cfg.URL == "" {
			return nil, fmt.Errorf("allowlist url is not set")
		}
		return allowlist.NewHTTP(cfg.URL, timeout), nil
	case "file":
		if cfg.File == "" {
			return nil, fmt.Errorf("allowlist file is not set")
		}
		return allowlist.NewFile(cfg.File), nil
	default:
		return nil, fmt.Errorf("unknown allowlist source %q", cfg.Source)
	}
}
