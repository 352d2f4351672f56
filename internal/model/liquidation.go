package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Liquidation struct {
	ID           string            `json:"id"`
	StaffID      string            `json:"staff_id"`
	Total        decimal.Decimal   `json:"total"`
	OrderCount   int               `json:"order_count"`
	LiquidatedAt time.Time         `json:"liquidated_at"`
	Lines        []LiquidationLine `json:"lines,omitempty"`
}

// LiquidationLine is one settled order, copied out of the backend before it
// was deleted there.
type LiquidationLine struct {
	TableNumber int             `json:"table_number"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ExtrasTotal decimal.Decimal `json:"extras_total"`
	LineTotal   decimal.Decimal `json:"line_total"`
	ReleasedAt  time.Time       `json:"released_at"`
}
