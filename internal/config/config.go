package config

import (
	"os"

	"github.com/Peeetk/shop-backend/account/service"
	"github.com/Peeetk/shop-backend/account/storage/postgres"
	"github.com/Peeetk/shop-backend/internal/checkout"
	"github.com/Peeetk/shop-backend/internal/notifier"

	"github.com/BurntSushi/toml"
)

type Server struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	CorsOrigin string `toml:"cors_origin"`
	Debug      bool   `toml:"debug_mode"`
}

type Storage struct {
	Backend    string          `toml:"backend"` // jsonfile, sqlite or postgres
	SqliteFile string          `toml:"sqlite_file"`
	JSONFile   string          `toml:"json_file"`
	Postgres   postgres.Config `toml:"postgres"`
}

type Allowlist struct {
	Source  string `toml:"source"` // http or file
	URL     string `toml:"url"`
	File    string `toml:"file"`
	Timeout string `toml:"timeout"`
}

type Config struct {
	Server    Server          `toml:"server"`
	Storage   Storage         `toml:"storage"`
	Auth      service.Config  `toml:"auth"`
	Allowlist Allowlist       `toml:"allowlist"`
	SMTP      notifier.Config `toml:"smtp"`
	Stripe    checkout.Config `toml:"stripe"`
}

func New(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, err
	}

	// Secrets come from the environment in deployments, the config file
	// only carries development defaults.
	if key := os.Getenv("SIGNING_KEY"); key != "" {
		cfg.Auth.SigningKey = key
	}
	if key := os.Getenv("STRIPE_API_KEY"); key != "" {
		cfg.Stripe.APIKey = key
	}
	if pass := os.Getenv("SMTP_PASSWORD"); pass != "" {
		cfg.SMTP.Password = pass
	}
	if pass := os.Getenv("POSTGRES_PASSWORD"); pass != "" {
		cfg.Storage.Postgres.Password = pass
	}

	return cfg, nil
}
