package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jhoicas/Inventario-costeo/docs"
	"github.com/jhoicas/Inventario-costeo/internal/bootstrap"
	infrapdf "github.com/jhoicas/Inventario-costeo/internal/infrastructure/pdf"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/report"
	httpRouter "github.com/jhoicas/Inventario-costeo/internal/interfaces/http"
	"github.com/jhoicas/Inventario-costeo/pkg/config"
	"github.com/jhoicas/Inventario-costeo/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Costing.Store).
		Str("home_currency", cfg.Costing.HomeCurrency).
		Msg("iniciando aplicación")

	ctx := context.Background()
	engine, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar motor de costeo")
	}
	defer engine.Close()

	serverCfg := httpRouter.ServerConfig{
		AppName:     cfg.App.Name,
		SwaggerFile: "./docs/swagger.json",
	}
	// Interfaz nil explícita; un *Metrics nil no sirve aquí.
	if engine.Metrics != nil {
		serverCfg.Metrics = engine.Metrics
	}

	app := httpRouter.NewApp(serverCfg, httpRouter.RouterDeps{
		Ledger:    engine.Ledger,
		Allocator: engine.Allocator,
		Convert:   engine.Convert,
		Catalog:   engine.Catalog,
		Valuation: engine.Valuation,
		Aging:     engine.Aging,
		XLSX:      report.NewXLSXExporter(),
		PDF:       infrapdf.NewMarotoPDFGenerator(cfg.Costing.CompanyName),
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
