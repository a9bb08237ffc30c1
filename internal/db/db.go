package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wikiforge/wikitree/internal/config"
	"github.com/wikiforge/wikitree/internal/migrate"
	"github.com/hashicorp/go-hclog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseConfig holds the resolved connection parameters for either
// PostgreSQL or SQLite.
type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite"

	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	Path string // sqlite only

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DatabaseConfigFromConfig converts the HCL-decoded database block into a
// DatabaseConfig.
func DatabaseConfigFromConfig(cfg *config.Database) DatabaseConfig {
	return DatabaseConfig{
		Driver:          cfg.Driver,
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		DBName:          cfg.DBName,
		SSLMode:         cfg.SSLMode,
		Path:            cfg.Path,
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxOpenConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
}

// NewDB opens a connection from an HCL config block, runs migrations, and
// returns a ready-to-use *gorm.DB.
func NewDB(cfg *config.Database, log hclog.Logger) (*gorm.DB, error) {
	return NewDBWithConfig(DatabaseConfigFromConfig(cfg), log)
}

// NewDBWithConfig opens a connection from a DatabaseConfig, runs
// migrations, and returns a ready-to-use *gorm.DB. Supports both
// PostgreSQL and SQLite.
func NewDBWithConfig(cfg DatabaseConfig, log hclog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	var driver string

	switch cfg.Driver {
	case "postgres":
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, sslMode)
		dialector = postgres.Open(dsn)
		driver = "postgres"

	case "sqlite":
		if cfg.Path != "" {
			dir := filepath.Dir(cfg.Path)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("error creating database directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.Path)
		driver = "sqlite"

	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", cfg.Driver)
	}

	gormConfig := &gorm.Config{}
	if log != nil {
		gormConfig.Logger = newGormLogger(log.Named("gorm"))
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	gdb, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sql.DB: %w", err)
	}
	applyPoolSettings(sqlDB, cfg)

	if err := migrate.RunMigrations(sqlDB, driver); err != nil {
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	if log != nil {
		log.Info("connected to database",
			"driver", driver,
			"idle_conns", sqlDB.Stats().Idle,
			"max_open_conns", sqlDB.Stats().MaxOpenConnections,
		)
	}

	return gdb, nil
}

func applyPoolSettings(sqlDB interface {
	SetMaxIdleConns(int)
	SetMaxOpenConns(int)
	SetConnMaxLifetime(time.Duration)
	SetConnMaxIdleTime(time.Duration)
}, cfg DatabaseConfig,
) {
	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = 10
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns == 0 {
		maxOpenConns = 25
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}
