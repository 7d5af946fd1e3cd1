// Package app composes the vault's long-lived dependencies behind an fx
// container so every command builds them the same way.
package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/chatvault/internal/bus"
	"github.com/matheus3301/chatvault/internal/config"
	"github.com/matheus3301/chatvault/internal/importer"
	"github.com/matheus3301/chatvault/internal/intake"
	"github.com/matheus3301/chatvault/internal/lock"
	"github.com/matheus3301/chatvault/internal/logging"
	"github.com/matheus3301/chatvault/internal/store"
	"github.com/matheus3301/chatvault/internal/vault"
)

// Overrides carries command-line settings that take precedence over the
// config file.
type Overrides struct {
	Strict bool
}

// App exposes the built dependencies to commands.
type App struct {
	Config *config.Config
	Log    *zap.Logger
	Bus    *bus.Bus
	DB     *store.DB
	Engine *importer.Engine

	fxApp *fx.App
}

// New builds and starts the container: config, logger, vault lock, store
// (migrated), and the import engine.
func New(ctx context.Context, over Overrides) (*App, error) {
	var a App
	a.fxApp = fx.New(
		fx.NopLogger,
		fx.Supply(over),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideEngine,
		),
		fx.Invoke(registerLifecycle),
		fx.Populate(&a.Config, &a.Log, &a.Bus, &a.DB, &a.Engine),
	)
	if err := a.fxApp.Start(ctx); err != nil {
		return nil, err
	}
	return &a, nil
}

// Close stops the container, closing the store and releasing the lock.
func (a *App) Close(ctx context.Context) error {
	return a.fxApp.Stop(ctx)
}

func provideConfig(over Overrides) (*config.Config, error) {
	if err := vault.EnsureDirs(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(vault.ConfigPath())
	if err != nil {
		return nil, err
	}
	if over.Strict {
		cfg.Import.Strict = true
	}
	return cfg, nil
}

func provideLogger() (*zap.Logger, error) {
	return logging.New(vault.LogPath())
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(logger *zap.Logger) (*lock.Lock, error) {
	l, err := lock.Acquire(vault.BaseDir())
	if err != nil {
		return nil, err
	}
	logger.Info("vault lock acquired", zap.String("dir", vault.BaseDir()))
	return l, nil
}

func provideStore(logger *zap.Logger) (*store.DB, error) {
	db, err := store.Open(vault.DBPath())
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	}
	return db, nil
}

func provideEngine(cfg *config.Config, db *store.DB, b *bus.Bus, logger *zap.Logger) *importer.Engine {
	opts := importer.Options{
		ParseChunkLines: cfg.Import.ParseChunkLines,
		WriteBatchSize:  cfg.Import.WriteBatchSize,
		DeleteBatchSize: cfg.Import.DeleteBatchSize,
		ReadChunkBytes:  256 * 1024,
		Limits:          limitsFrom(cfg),
	}
	return importer.NewEngine(db, b, logger, opts)
}

func limitsFrom(cfg *config.Config) intake.Limits {
	lim := intake.DefaultLimits()
	lim.Strict = cfg.Import.Strict
	lim.MinMatches = cfg.Import.MinMessages
	lim.MaxTextBytes = int64(cfg.Import.MaxFileSizeMB) << 20
	return lim
}

func registerLifecycle(lc fx.Lifecycle, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			err := db.Close()
			if lerr := lk.Release(); lerr != nil {
				logger.Warn("error releasing vault lock", zap.Error(lerr))
			}
			_ = logger.Sync()
			return err
		},
	})
}
