// Package app はストレージとユースケースを組み立て、起動時の読み込みと終了時の書き出しを行います。
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ogurasousui/pin-roster/internal/adapters/qrcode"
	"github.com/ogurasousui/pin-roster/internal/adapters/repository/snapshot"
	"github.com/ogurasousui/pin-roster/internal/core/auth"
	"github.com/ogurasousui/pin-roster/internal/core/employee"
	"github.com/ogurasousui/pin-roster/internal/core/ledger"
	"github.com/ogurasousui/pin-roster/internal/core/report"
	"github.com/ogurasousui/pin-roster/internal/core/state"
	"github.com/ogurasousui/pin-roster/internal/platform/config"
	"github.com/ogurasousui/pin-roster/internal/platform/storage"
)

// App は組み立て済みのユースケース一式です。
type App struct {
	Roster *employee.Service
	Ledger *ledger.Service
	Report *report.Service
	Auth   *auth.Service
	Codec  *qrcode.Codec

	backend *storage.Backend
	logger  *slog.Logger
}

// Open は設定に従ってストレージを開き、名簿とスキャン記録を読み込みます。
//
// 保存内容がスキーマに合致しない場合 (snapshot.ErrInvalidDocument) はログに記録し、空の状態で続行します。
// 読み込み自体の失敗や未知のスキーマバージョンはエラーとして返します。
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a, err := New(backend.Gateway, cfg.Storage, logger)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	a.backend = backend

	if err := a.Load(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}
	return a, nil
}

// New は gw の上にユースケースを組み立てます。読み込みは行いません。
func New(gw state.Gateway, cfg config.StorageConfig, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	codec, err := qrcode.New(qrcode.Options{Margin: -1})
	if err != nil {
		return nil, err
	}

	roster := employee.NewService(snapshot.NewRosterStore(gw), employee.Options{
		SaveTimeout: cfg.SaveTimeout,
		Logger:      logger,
	})
	scans := ledger.NewService(snapshot.NewLedgerStore(gw), ledger.Options{
		SaveTimeout: cfg.SaveTimeout,
		Logger:      logger,
	})

	return &App{
		Roster: roster,
		Ledger: scans,
		Report: report.NewService(roster, scans),
		Auth:   auth.NewService(),
		Codec:  codec,
		logger: logger,
	}, nil
}

// Load は名簿とスキャン記録を読み込みます。
func (a *App) Load(ctx context.Context) error {
	if err := a.tolerate(a.Roster.Load(ctx), state.KeyUsers); err != nil {
		return err
	}
	return a.tolerate(a.Ledger.Load(ctx), state.KeyScanLog)
}

func (a *App) tolerate(err error, key string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, snapshot.ErrInvalidDocument) {
		a.logger.Error("stored data could not be loaded, starting empty", "key", key, "error", err)
		return nil
	}
	return err
}

// NewSession はスキャン画面 1 回分の認識セッションを生成します。
func (a *App) NewSession() *ledger.Session {
	return ledger.NewSession(a.Ledger, a.Codec)
}

// Close は未保存の書き込みを処理してからストレージを閉じます。
func (a *App) Close(ctx context.Context) error {
	err := errors.Join(a.Roster.Close(ctx), a.Ledger.Close(ctx))
	if a.backend != nil {
		err = errors.Join(err, a.backend.Close())
	}
	return err
}
