package config

import (
	"errors"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all process configuration. It is loaded once at startup
// and never mutated afterwards; components receive it (or the fields
// they need) through their constructors.
type Config struct {
	ListenAddr   string `envconfig:"LISTEN_ADDR" default:":8080"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"data/licenses.db"`

	// AdminAPIKey is the shared secret for administrative endpoints.
	// AdminAPIKeyHash may be set instead, holding a bcrypt hash of the
	// secret so the plaintext never appears in the environment.
	AdminAPIKey     string `envconfig:"ADMIN_API_KEY"`
	AdminAPIKeyHash string `envconfig:"ADMIN_API_KEY_HASH"`

	// Optional mirroring of the license table to a Google Sheet.
	SheetSyncEnabled     bool   `envconfig:"SHEET_SYNC_ENABLED"`
	SheetCredentialsPath string `envconfig:"SHEET_CREDENTIALS_PATH"`
	SheetSpreadsheetID   string `envconfig:"SHEET_SPREADSHEET_ID"`
	SheetName            string `envconfig:"SHEET_NAME" default:"Licenses"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.AdminAPIKey == "" && cfg.AdminAPIKeyHash == "" {
		return nil, errors.New("config: ADMIN_API_KEY or ADMIN_API_KEY_HASH must be set")
	}
	if cfg.SheetSyncEnabled && (cfg.SheetCredentialsPath == "" || cfg.SheetSpreadsheetID == "") {
		return nil, errors.New("config: sheet sync enabled but SHEET_CREDENTIALS_PATH or SHEET_SPREADSHEET_ID missing")
	}
	return &cfg, nil
}
