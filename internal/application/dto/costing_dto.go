package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Registro de artículos ─────────────────────────────────────────────────────

// RegisterItemRequest body para PUT /api/costing/items.
type RegisterItemRequest struct {
	ProductID      string           `json:"product_id"`
	VariantID      string           `json:"variant_id,omitempty"`
	SKU            string           `json:"sku"`
	Name           string           `json:"name"`
	StoreID        string           `json:"store_id,omitempty"`
	CategoryID     string           `json:"category_id,omitempty"`
	CostPrice      *decimal.Decimal `json:"cost_price,omitempty"`
	WholesalePrice *decimal.Decimal `json:"wholesale_price,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
}

// ItemResponse artículo del registro.
type ItemResponse struct {
	ProductID      string          `json:"product_id"`
	VariantID      string          `json:"variant_id,omitempty"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	StoreID        string          `json:"store_id,omitempty"`
	CategoryID     string          `json:"category_id,omitempty"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	Price          decimal.Decimal `json:"price"`
	StockQuantity  decimal.Decimal `json:"stock_quantity"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MovementResponse un movimiento del historial.
type MovementResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	LayerID       string          `json:"layer_id,omitempty"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Reference     string          `json:"reference,omitempty"`
	Date          time.Time       `json:"date"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

// ── Libro de capas ────────────────────────────────────────────────────────────

// AppendLayerRequest body para POST /api/costing/layers.
type AppendLayerRequest struct {
	ProductID       string          `json:"product_id"`
	VariantID       string          `json:"variant_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	ReceivedAt      *time.Time      `json:"received_at,omitempty"`
	SourceType      string          `json:"source_type,omitempty"` // PURCHASE | PRODUCTION | OPENING
	SourceReference string          `json:"source_reference,omitempty"`
}

// LayerResponse capa de inventario.
type LayerResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	VariantID         string          `json:"variant_id,omitempty"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	ReceivedAt        time.Time       `json:"received_at"`
	SourceType        string          `json:"source_type"`
	SourceReference   string          `json:"source_reference,omitempty"`
}

// ConsumeRequest body para POST /api/costing/consumptions.
type ConsumeRequest struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reference string          `json:"reference,omitempty"`
}

// LayerConsumptionResponse lo tomado de una capa.
type LayerConsumptionResponse struct {
	LayerID       string          `json:"layer_id"`
	QuantityTaken decimal.Decimal `json:"quantity_taken"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Cost          decimal.Decimal `json:"cost"`
}

// ConsumptionResponse detalle de un consumo FIFO.
type ConsumptionResponse struct {
	ProductID     string                     `json:"product_id"`
	VariantID     string                     `json:"variant_id,omitempty"`
	TransactionID string                     `json:"transaction_id"`
	Quantity      decimal.Decimal            `json:"quantity"`
	TotalCost     decimal.Decimal            `json:"total_cost"`
	Consumptions  []LayerConsumptionResponse `json:"consumptions"`
}

// MergeRequest body para POST /api/costing/merges.
type MergeRequest struct {
	FromProductID string `json:"from_product_id"`
	FromVariantID string `json:"from_variant_id,omitempty"`
	ToProductID   string `json:"to_product_id"`
	ToVariantID   string `json:"to_variant_id,omitempty"`
}

// MergeResponse capas reasignadas.
type MergeResponse struct {
	LayersMoved int64 `json:"layers_moved"`
}

// StockResponse contador cacheado contra suma de capas.
type StockResponse struct {
	ProductID  string          `json:"product_id"`
	VariantID  string          `json:"variant_id,omitempty"`
	Cached     decimal.Decimal `json:"cached"`
	Actual     decimal.Decimal `json:"actual"`
	Difference decimal.Decimal `json:"difference"`
	Drift      bool            `json:"drift"`
}

// ── Costeo de embarques ───────────────────────────────────────────────────────

// ReceiptLineRequest una línea del embarque.
type ReceiptLineRequest struct {
	ProductID      string          `json:"product_id"`
	VariantID      string          `json:"variant_id,omitempty"`
	Cartons        decimal.Decimal `json:"cartons"`
	TotalPieces    decimal.Decimal `json:"total_pieces"`
	TotalWeight    decimal.Decimal `json:"total_weight"`
	PricePerCarton decimal.Decimal `json:"price_per_carton"`
	PriceCurrency  string          `json:"price_currency,omitempty"` // vacía o distinta de la local: se aplica exchange_rate
}

// ChargeRequest cargo compartido del embarque.
type ChargeRequest struct {
	Type        string          `json:"type"` // freight | clearing | customs | handling | other
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
}

// AllocateRequest body para POST /api/costing/receipts/{preview,allocate}.
type AllocateRequest struct {
	ReceiptID          string               `json:"receipt_id"`
	Lines              []ReceiptLineRequest `json:"lines"`
	Charges            []ChargeRequest      `json:"charges"`
	ExchangeRate       decimal.Decimal      `json:"exchange_rate"`
	WholesaleMarginPct decimal.Decimal      `json:"wholesale_margin_pct"`
	RetailMarginPct    decimal.Decimal      `json:"retail_margin_pct"`
	ReceivedAt         *time.Time           `json:"received_at,omitempty"`
}

// LandedCostResponse costo en destino de una línea.
type LandedCostResponse struct {
	ProductID         string          `json:"product_id"`
	VariantID         string          `json:"variant_id,omitempty"`
	LayerID           string          `json:"layer_id,omitempty"`
	PiecesPerCarton   decimal.Decimal `json:"pieces_per_carton"`
	WeightPerCarton   decimal.Decimal `json:"weight_per_carton"`
	BaseCostPerUnit   decimal.Decimal `json:"base_cost_per_unit"`
	ChargePerCarton   decimal.Decimal `json:"charge_per_carton"`
	ChargePerUnit     decimal.Decimal `json:"charge_per_unit"`
	LandedCostPerUnit decimal.Decimal `json:"landed_cost_per_unit"`
	WholesalePrice    decimal.Decimal `json:"wholesale_price"`
	RetailPrice       decimal.Decimal `json:"retail_price"`
	TotalPieces       decimal.Decimal `json:"total_pieces"`
	TotalLandedCost   decimal.Decimal `json:"total_landed_cost"`
}

// AllocationResponse resultado del costeo del embarque.
type AllocationResponse struct {
	ReceiptID             string               `json:"receipt_id"`
	Results               []LandedCostResponse `json:"results"`
	TotalCharges          decimal.Decimal      `json:"total_charges"`
	TotalWeight           decimal.Decimal      `json:"total_weight"`
	ChargesPerWeightUnit  decimal.Decimal      `json:"charges_per_weight_unit"`
	ChargesNotDistributed bool                 `json:"charges_not_distributed"`
	Warnings              []string             `json:"warnings,omitempty"`
}

// PriceProposalRequest precios a escribir en el registro.
type PriceProposalRequest struct {
	ProductID      string          `json:"product_id"`
	VariantID      string          `json:"variant_id,omitempty"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
}

// ApplyPricesRequest body para POST /api/costing/prices/apply.
type ApplyPricesRequest struct {
	Proposals []PriceProposalRequest `json:"proposals"`
}

// ── Producción ────────────────────────────────────────────────────────────────

// ProductionOutputRequest un producto resultante.
type ProductionOutputRequest struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	SharePct  decimal.Decimal `json:"share_pct"`
}

// ProductionRequest body para POST /api/costing/productions.
type ProductionRequest struct {
	ProductID string                    `json:"product_id"`
	VariantID string                    `json:"variant_id,omitempty"`
	Quantity  decimal.Decimal           `json:"quantity"`
	Outputs   []ProductionOutputRequest `json:"outputs"`
	Reference string                    `json:"reference,omitempty"`
}

// ProductionOutputResponse capa creada para una salida.
type ProductionOutputResponse struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	LayerID   string          `json:"layer_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	SharePct  decimal.Decimal `json:"share_pct"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// ProductionResponse consumo del insumo y salidas.
type ProductionResponse struct {
	Consumed ConsumptionResponse        `json:"consumed"`
	Outputs  []ProductionOutputResponse `json:"outputs"`
}

// ── Valorización ──────────────────────────────────────────────────────────────

// ItemValuationResponse valor de un artículo por ambos métodos.
type ItemValuationResponse struct {
	ProductID            string          `json:"product_id"`
	VariantID            string          `json:"variant_id,omitempty"`
	Quantity             decimal.Decimal `json:"quantity"`
	FIFOUnitCost         decimal.Decimal `json:"fifo_unit_cost"`
	FIFOValue            decimal.Decimal `json:"fifo_value"`
	AverageUnitCost      decimal.Decimal `json:"average_unit_cost"`
	WeightedAverageValue decimal.Decimal `json:"weighted_average_value"`
	Difference           decimal.Decimal `json:"difference"`
}
