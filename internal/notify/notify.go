// Package notify publishes floor events (orders added, prepared, served,
// tables released, liquidations) for kitchen displays and other consumers.
package notify

import (
	"context"
	"time"
)

const (
	OrderAdded       = "order.added"
	OrderPrepared    = "order.prepared"
	OrderUnprepared  = "order.unprepared"
	OrderServed      = "order.served"
	OrderUnserved    = "order.unserved"
	OrderPaid        = "order.paid"
	OrderUnpaid      = "order.unpaid"
	OrderUpdated     = "order.updated"
	OrderRemoved     = "order.removed"
	TableAdded       = "table.added"
	TableRemoved     = "table.removed"
	TableReleased    = "table.released"
	OrdersLiquidated = "orders.liquidated"
)

type Event struct {
	Key         string    `json:"key"`
	OrderID     string    `json:"order_id,omitempty"`
	TableNumber int       `json:"table_number,omitempty"`
	Product     string    `json:"product,omitempty"`
	Quantity    int       `json:"quantity,omitempty"`
	Count       int       `json:"count,omitempty"`
	Total       string    `json:"total,omitempty"`
	At          time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
