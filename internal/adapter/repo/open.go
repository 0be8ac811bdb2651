package repo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/internal/infra"
)

// Open connects the store selected by STORE_DRIVER and makes sure its schema exists.
func Open(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (domain.Store, error) {
	logger = infra.Component(logger, "store")
	switch cfg.StoreDriver {
	case infra.StoreDriverPostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := NewPostgresStore(infra.NewSQLRunner(pool, logger), pool.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	case infra.StoreDriverSQLite:
		db, err := infra.NewSQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store := NewSQLiteStore(db, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
