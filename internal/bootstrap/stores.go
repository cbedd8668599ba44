// Package bootstrap opens the storage backend selected by configuration and
// hands back repositories shared by the server and the operator commands.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/techtimeoff/leave-service/internal/config"
	"github.com/techtimeoff/leave-service/internal/persistence"
	"github.com/techtimeoff/leave-service/internal/repository"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores holds the repositories for the selected driver.
type Stores struct {
	Users   repository.UserRepository
	Leaves  repository.LeaveRepository
	History repository.LeaveHistoryRepository
	// Checks lists the dependencies probed by the readiness endpoint.
	Checks map[string]Pinger

	closers []func()
}

// OpenStores connects to Postgres or SQLite according to cfg.Storage.Driver.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.StorageDriverSQLite:
		return openSQLite(cfg, logger)
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			pg.Close()
			return nil, err
		}
	}
	return &Stores{
		Users:   repository.NewUserRepository(pg.Pool),
		Leaves:  repository.NewLeaveRepository(pg.Pool),
		History: repository.NewLeaveHistoryRepository(pg.Pool),
		Checks:  map[string]Pinger{"postgres": pg},
		closers: []func(){pg.Close},
	}, nil
}

func openSQLite(cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	db, err := persistence.NewSQLite(cfg.SQLite, logger)
	if err != nil {
		return nil, err
	}
	users, err := repository.NewGormUserRepository(db.DB)
	if err != nil {
		db.Close()
		return nil, err
	}
	leaves, err := repository.NewGormLeaveRepository(db.DB)
	if err != nil {
		db.Close()
		return nil, err
	}
	history, err := repository.NewGormLeaveHistoryRepository(db.DB)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Stores{
		Users:   users,
		Leaves:  leaves,
		History: history,
		Checks:  map[string]Pinger{"sqlite": db},
		closers: []func(){db.Close},
	}, nil
}

// Close releases every connection in reverse order of opening.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
