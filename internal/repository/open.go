// Package repository selects and opens the configured conversation store.
package repository

import (
	"context"
	"fmt"

	"github.com/sandria/chatvault/internal/config"
	"github.com/sandria/chatvault/internal/domain"
	"github.com/sandria/chatvault/internal/repository/mysql"
	"github.com/sandria/chatvault/internal/repository/postgres"
	"github.com/sandria/chatvault/internal/repository/sqlite"
)

// Open connects to the configured backend, applies migrations and returns
// the repository plus a close function.
func Open(ctx context.Context, cfg config.StorageConfig) (domain.ConversationRepository, func() error, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlite.Migrate(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewConversationRepository(db), db.Close, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(cfg.Postgres.DSN()); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewConversationRepository(db), func() error { db.Close(); return nil }, nil

	case "mysql":
		db, err := mysql.Open(ctx, cfg.MySQL)
		if err != nil {
			return nil, nil, err
		}
		if err := mysql.Migrate(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return mysql.NewConversationRepository(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}
