// Package config defines the HCL configuration file format used by the
// wikitree CLI binary. wikitree-migrate takes its settings from flags.
package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the root of a wikitree HCL config file.
type Config struct {
	Database *Database `hcl:"database,block"`
	Log      *Log      `hcl:"log,block"`
}

// Database configures the SQL connection. Driver selects between
// "postgres" and "sqlite"; the Host/Port/User/Password/DBName fields
// apply only to postgres, Path only to sqlite.
type Database struct {
	Driver   string `hcl:"driver,optional"`
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional"`
	DBName   string `hcl:"db_name,optional"`
	SSLMode  string `hcl:"ssl_mode,optional"`
	Path     string `hcl:"path,optional"`

	MaxIdleConns    int           `hcl:"max_idle_conns,optional"`
	MaxOpenConns    int           `hcl:"max_open_conns,optional"`
	ConnMaxLifetime time.Duration `hcl:"conn_max_lifetime,optional"`
	ConnMaxIdleTime time.Duration `hcl:"conn_max_idle_time,optional"`
}

// Log is the config file's log block. It is decoded and defaulted, but
// the CLI builds its root hclog logger without reading it.
type Log struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

// DefaultConfig returns a config pointed at a local SQLite database, the
// zero-setup path for trying the tool out.
func DefaultConfig() *Config {
	return &Config{
		Database: &Database{
			Driver: "sqlite",
			Path:   ".wikitree/wikitree.db",
		},
		Log: &Log{
			Level:  "info",
			Format: "standard",
		},
	}
}

// NewConfig loads and validates a Config from an HCL file at path. An
// empty path returns DefaultConfig().
func NewConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file %q: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database == nil {
		c.Database = DefaultConfig().Database
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Log == nil {
		c.Log = DefaultConfig().Log
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "standard"
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.DBName == "" {
			return fmt.Errorf("database.db_name is required for the postgres driver")
		}
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q (expected postgres or sqlite)", c.Database.Driver)
	}
	return nil
}
