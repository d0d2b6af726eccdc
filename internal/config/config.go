package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the server reads from the environment. Load a
// .env file first (cmd/server does) if you want file-based configuration.
type Config struct {
	Addr            string
	AppPassword     string
	AdminPassword   string
	OperatorsDir    string // optional; empty means the built-in roster
	CooldownSeconds int
}

var (
	ErrMissingAppPassword   = errors.New("APP_PASSWORD is required")
	ErrMissingAdminPassword = errors.New("ADMIN_PASSWORD is required")
)

func FromEnv() (Config, error) {
	cfg := Config{
		Addr:            ":5000",
		CooldownSeconds: 30,
	}

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}

	cfg.AppPassword = os.Getenv("APP_PASSWORD")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	cfg.OperatorsDir = os.Getenv("OPERATORS_DIR")

	if v := os.Getenv("COOLDOWN_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid COOLDOWN_SECONDS %q", v)
		}
		cfg.CooldownSeconds = n
	}

	if cfg.AppPassword == "" {
		return Config{}, ErrMissingAppPassword
	}
	if cfg.AdminPassword == "" {
		return Config{}, ErrMissingAdminPassword
	}

	return cfg, nil
}
