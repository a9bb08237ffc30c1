// Package commands holds the wikitree CLI's version command and the
// helpers (OpenDB, ParseOpContext) shared by the subcommand groups, which
// live in the space, changerequest and db sub-packages.
package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/wikiforge/wikitree/internal/config"
	"github.com/wikiforge/wikitree/internal/db"
	"github.com/wikiforge/wikitree/pkg/wikitree"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

// OpenDB loads the HCL config at configPath (or the zero-setup sqlite
// default if empty) and opens a migrated database connection, the same
// two-step every operator subcommand performs before touching a model.
func OpenDB(configPath string, log hclog.Logger) (*gorm.DB, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	database, err := db.NewDB(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	return database, nil
}

// ParseOpContext builds an OpContext from a CLI-supplied principal and
// comma-separated role names. It is the CLI's stand-in for the
// transport-layer authentication the core never performs itself.
func ParseOpContext(principal, roles string) wikitree.OpContext {
	var parsed []wikitree.Role
	for _, r := range strings.Split(roles, ",") {
		r = strings.TrimSpace(r)
		if r != "" {
			parsed = append(parsed, wikitree.Role(r))
		}
	}
	return wikitree.NewOpContext(context.Background(), principal, parsed...)
}
