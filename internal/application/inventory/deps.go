package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/Inventario-costeo/pkg/logger"
	"github.com/shopspring/decimal"
)

// DefaultHomeCurrency moneda local si la configuración no define otra.
const DefaultHomeCurrency = "COP"

var hundred = decimal.NewFromInt(100)

// Deps dependencias compartidas por los casos de uso del motor de costeo.
// TxRunner y Reads son obligatorios; el resto tiene valores por defecto mudos.
type Deps struct {
	TxRunner     TxRunner
	Reads        Repositories
	Cache        ReportCache
	Metrics      Metrics
	Logger       *logger.Logger
	HomeCurrency string
	Now          func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = NoopReportCache{}
	}
	if d.Metrics == nil {
		d.Metrics = NoopMetrics{}
	}
	d.Logger = logger.OrNop(d.Logger)
	if strings.TrimSpace(d.HomeCurrency) == "" {
		d.HomeCurrency = DefaultHomeCurrency
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// committed se llama después de cada escritura confirmada. Un fallo del cache no revierte
// la operación, solo se registra.
func (d Deps) committed(ctx context.Context) {
	if err := d.Cache.Invalidate(ctx); err != nil {
		d.Logger.Warn().Err(err).Msg("no se pudo invalidar el cache de reportes")
	}
}
