// Package db opens the sqlite database backing lakesim.
package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tidelake/lakeacl/internal/utils"
)

// Pragmas tuned for a small local service: WAL keeps readers open
// while the simulator writes, busy_timeout absorbs lock contention.
const defaultPragmas = `
PRAGMA journal_mode=WAL;
PRAGMA busy_timeout=5000;
PRAGMA foreign_keys=ON;
PRAGMA temp_store=MEMORY;
PRAGMA cache_size=8000;
`

// InMemory is the path for a throwaway database.
const InMemory = ":memory:"

type config struct {
	path        string
	pragmas     string
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

type Option func(*config)

// WithPath sets the database file. Defaults to InMemory.
func WithPath(path string) Option {
	return func(c *config) {
		c.path = path
	}
}

// WithPragmas replaces the default pragma block entirely.
func WithPragmas(pragmas string) Option {
	return func(c *config) {
		c.pragmas = pragmas
	}
}

func WithMaxOpenConns(n int) Option {
	return func(c *config) {
		c.maxOpen = n
	}
}

func WithMaxIdleConns(n int) Option {
	return func(c *config) {
		c.maxIdle = n
	}
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(c *config) {
		c.maxLifetime = d
	}
}

// NewSqliteDB opens (creating if needed) a sqlite database and
// applies the pragma block. The driver is picked at build time; see
// the sqlite3 build-tag files.
func NewSqliteDB(opts ...Option) (*sqlx.DB, error) {
	cfg := &config{
		path:    InMemory,
		pragmas: defaultPragmas,
		maxIdle: 2,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	dsn := cfg.path
	if cfg.path == InMemory {
		// Every pool connection would otherwise get its own empty db.
		cfg.maxOpen = 1
		cfg.maxIdle = 1
	} else {
		if err := utils.EnsureParent(cfg.path); err != nil {
			return nil, fmt.Errorf("ensure db directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_txlock=immediate&mode=rwc", cfg.path)
	}

	slog.Debug("opening sqlite db", "driver", driverID, "path", cfg.path)
	conn, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.path, err)
	}

	if cfg.maxOpen > 0 {
		conn.SetMaxOpenConns(cfg.maxOpen)
	}
	if cfg.maxIdle > 0 {
		conn.SetMaxIdleConns(cfg.maxIdle)
	}
	if cfg.maxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.maxLifetime)
	}

	if _, err := conn.Exec(cfg.pragmas); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	return conn, nil
}
