package records

import (
	"context"
	"fmt"

	"footbrief-api/internal/config"
	"footbrief-api/internal/database"

	"go.uber.org/zap"
)

// NewBackend builds the backend selected by cfg.Store.Driver. The returned close
// function releases backend resources and is never nil.
func NewBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Backend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Driver {
	case config.DriverTeable:
		return NewTeableBackend(cfg.Teable, nil, logger), noop, nil

	case config.DriverSheets:
		backend, err := NewSheetsBackend(ctx, cfg.Sheets, logger)
		if err != nil {
			return nil, noop, err
		}
		return backend, noop, nil

	case config.DriverPostgres:
		db, err := database.NewPostgresConnection(cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		if err := RunMigrations(db); err != nil {
			database.Close(db)
			return nil, noop, err
		}
		return NewGormBackend(db, logger), func() error { return database.Close(db) }, nil

	case config.DriverMemory, "":
		logger.Warn("Using in-memory record store, preferences will not survive a restart")
		return NewMemoryBackend(), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
