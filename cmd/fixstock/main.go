// fixstock revisa que el contador de stock de cada artículo coincida con la suma de sus capas
// y, con -apply, lo reemplaza por la suma dejando un movimiento RESYNC.
//
// Uso: go run ./cmd/fixstock [-apply] [-store tienda] [-product id]
// Sin -apply solo reporta; termina con código 1 si encontró diferencias.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/bootstrap"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/pkg/config"
	"github.com/jhoicas/Inventario-costeo/pkg/logger"
)

const fixUser = "fixstock"

type options struct {
	apply  bool
	filter entity.ItemFilter
}

type summary struct {
	checked int
	drifted int
	fixed   int
}

func main() {
	var opts options
	flag.BoolVar(&opts.apply, "apply", false, "corrige los contadores desalineados")
	flag.StringVar(&opts.filter.StoreID, "store", "", "limita la revisión a una tienda")
	flag.StringVar(&opts.filter.ProductID, "product", "", "limita la revisión a un producto")
	flag.Parse()

	os.Exit(execute(opts))
}

// execute devuelve el código de salida; los defer (cierre del pool y de Redis) corren antes
// de os.Exit.
func execute(opts options) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		return 2
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx := context.Background()
	engine, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Inicializar motor: %v\n", err)
		return 2
	}
	defer engine.Close()

	sum, err := run(ctx, engine.Catalog, engine.Ledger, opts, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Revisión de stock: %v\n", err)
		return 2
	}
	fmt.Printf("Revisados: %d, desalineados: %d, corregidos: %d\n", sum.checked, sum.drifted, sum.fixed)
	return sum.exitCode()
}

// exitCode 1 si quedan contadores desalineados sin corregir.
func (s summary) exitCode() int {
	if s.drifted > s.fixed {
		return 1
	}
	return 0
}

func run(ctx context.Context, catalog *inventory.CatalogUseCase, ledger *inventory.LedgerUseCase, opts options, out io.Writer) (summary, error) {
	var sum summary
	items, err := catalog.ListItems(ctx, opts.filter)
	if err != nil {
		return sum, err
	}
	for _, it := range items {
		sum.checked++
		_, err := ledger.CheckStockDrift(ctx, it.Key())
		var drift *domain.StockDriftError
		if err == nil {
			continue
		}
		if !errors.As(err, &drift) {
			return sum, err
		}
		sum.drifted++
		fmt.Fprintf(out, "%s\tcontador=%s\tcapas=%s\n", it.Key().String(), drift.Cached.String(), drift.Actual.String())
		if !opts.apply {
			continue
		}
		if _, err := ledger.ResyncStockCounter(ctx, it.Key(), fixUser); err != nil {
			return sum, err
		}
		sum.fixed++
	}
	return sum, nil
}
