package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_EventosDelMotor(t *testing.T) {
	m := New(nil)

	m.LayerAppended("PURCHASE", decimal.NewFromInt(10))
	m.LayerAppended("PURCHASE", decimal.NewFromInt(5))
	m.Consumed("OUT", decimal.NewFromInt(-4), decimal.NewFromInt(-40))
	m.InsufficientStock()
	m.StockDrift()
	m.StockDrift()
	m.Allocation(3, false)
	m.Allocation(1, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LayersAppended.WithLabelValues("PURCHASE")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.QuantityReceived.WithLabelValues("PURCHASE")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.QuantityConsumed.WithLabelValues("OUT")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.CostConsumed.WithLabelValues("OUT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InsufficientStocks))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StockDrifts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Allocations.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Allocations.WithLabelValues("false")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordHTTPRequest("GET", "/api/costing/aging", 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "costing_http_requests_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
