// Package storage は設定に従って state.Gateway のバックエンドを選択します。
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ogurasousui/pin-roster/internal/adapters/repository/file"
	"github.com/ogurasousui/pin-roster/internal/adapters/repository/postgres"
	sqliterepo "github.com/ogurasousui/pin-roster/internal/adapters/repository/sqlite"
	"github.com/ogurasousui/pin-roster/internal/core/state"
	"github.com/ogurasousui/pin-roster/internal/platform/config"
	pg "github.com/ogurasousui/pin-roster/internal/platform/db/postgres"
	sqlitedb "github.com/ogurasousui/pin-roster/internal/platform/db/sqlite"
)

// Backend は選択されたゲートウェイと、その後始末を保持します。
type Backend struct {
	Gateway state.Gateway
	Driver  string
	close   func() error
}

// Close はバックエンドが保持する接続を解放します。
func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// Open は cfg.Storage.Driver に対応するバックエンドを開きます。
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("driver", cfg.Storage.Driver)

	switch cfg.Storage.Driver {
	case config.DriverFile, "":
		gw, err := file.NewGateway(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("storage opened", "path", cfg.Storage.Path)
		return &Backend{Gateway: gw, Driver: config.DriverFile}, nil

	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Storage.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("storage: create %s: %w", dir, err)
			}
		}
		pool, err := sqlitedb.Open(sqlitedb.Config{
			Path:      cfg.Storage.Path,
			PoolSize:  cfg.Storage.PoolSize,
			Logger:    logger,
			OnConnect: sqliterepo.EnsureSchema,
		})
		if err != nil {
			return nil, err
		}
		return &Backend{Gateway: sqliterepo.NewGateway(pool), Driver: config.DriverSQLite, close: pool.Close}, nil

	case config.DriverPostgres:
		pool, err := pg.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Gateway: postgres.NewGateway(pool, 0),
			Driver:  config.DriverPostgres,
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil
	}

	return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Storage.Driver)
}
