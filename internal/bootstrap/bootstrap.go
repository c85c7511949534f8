// Package bootstrap arma el motor de costeo a partir de la configuración: almacén
// (PostgreSQL o memoria), migraciones, cache de reportes y métricas.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/cache"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/metrics"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/postgres/migrations"
	"github.com/jhoicas/Inventario-costeo/pkg/config"
	"github.com/jhoicas/Inventario-costeo/pkg/logger"
)

// Engine casos de uso listos y los recursos a cerrar al apagar.
type Engine struct {
	Deps      inventory.Deps
	Metrics   *metrics.Metrics // nil si METRICS_ENABLED=false
	Ledger    *inventory.LedgerUseCase
	Allocator *inventory.AllocatorUseCase
	Convert   *inventory.ConvertUseCase
	Catalog   *inventory.CatalogUseCase
	Valuation *inventory.ValuationUseCase
	Aging     *inventory.AgingUseCase

	closers []func()
}

// Close libera pool y cliente Redis en orden inverso.
func (e *Engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// Open conecta el almacén configurado y construye los casos de uso.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Engine, error) {
	e := &Engine{}
	deps := inventory.Deps{
		Logger:       log,
		HomeCurrency: cfg.Costing.HomeCurrency,
	}

	switch cfg.Costing.Store {
	case config.StoreMemory:
		store := memory.NewStore()
		deps.TxRunner = memory.NewTxRunner(store)
		deps.Reads = store.Repositories()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		if cfg.Costing.RunMigrations {
			if err := migrations.Up(ctx, postgres.ResolvedDSN(cfg.DB)); err != nil {
				return nil, err
			}
			log.Info().Msg("migraciones aplicadas")
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		e.closers = append(e.closers, pool.Close)
		deps.TxRunner = postgres.NewTxRunner(pool)
		deps.Reads = postgres.ReadRepositories(pool)
	}

	if cfg.Redis.Enabled() {
		rc := cache.NewRedisReportCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.ReportTTL)
		if err := rc.Ping(ctx); err != nil {
			// Sin Redis los reportes se calculan siempre; no es motivo para no arrancar.
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, cache de reportes desactivado")
			_ = rc.Close()
		} else {
			deps.Cache = rc
			e.closers = append(e.closers, func() { _ = rc.Close() })
		}
	}

	if cfg.Metrics.Enabled {
		e.Metrics = metrics.New(metrics.DefaultConfig())
		deps.Metrics = e.Metrics
	}

	e.Deps = deps
	e.Ledger = inventory.NewLedgerUseCase(deps)
	e.Allocator = inventory.NewAllocatorUseCase(deps)
	e.Convert = inventory.NewConvertUseCase(deps)
	e.Catalog = inventory.NewCatalogUseCase(deps)
	e.Valuation = inventory.NewValuationUseCase(deps)
	e.Aging = inventory.NewAgingUseCase(deps)
	return e, nil
}
