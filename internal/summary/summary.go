// Package summary derives floor state from the denormalized order list:
// totals, per-table status and the pending kitchen/service work. Every
// function is pure and safe on nil input.
package summary

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"frontofhouse/internal/model"
)

type Status string

const (
	StatusEmpty          Status = "empty"
	StatusPendingPrep    Status = "pending-prep"
	StatusPendingService Status = "pending-service"
	StatusReady          Status = "ready"
)

func LineTotal(o model.Order) decimal.Decimal {
	return o.UnitPrice().Mul(decimal.NewFromInt(int64(o.Quantity)))
}

func Total(orders []model.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(LineTotal(o))
	}
	return total
}

func UnpaidTotal(orders []model.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Paid {
			continue
		}
		total = total.Add(LineTotal(o))
	}
	return total
}

func Active(orders []model.Order) []model.Order {
	return filter(orders, func(o model.Order) bool { return !o.Released() })
}

func Released(orders []model.Order) []model.Order {
	return filter(orders, model.Order.Released)
}

// Classify buckets an order set. Unprepared work outranks unserved work,
// which outranks a fully served set.
func Classify(orders []model.Order) Status {
	switch {
	case len(orders) == 0:
		return StatusEmpty
	case some(orders, func(o model.Order) bool { return !o.Prepared }):
		return StatusPendingPrep
	case some(orders, func(o model.Order) bool { return !o.Served }):
		return StatusPendingService
	default:
		return StatusReady
	}
}

// Overlaps reports a set that is waiting on the kitchen and on the floor at
// the same time.
func Overlaps(orders []model.Order) bool {
	return some(orders, func(o model.Order) bool { return !o.Prepared }) &&
		some(orders, func(o model.Order) bool { return o.Prepared && !o.Served })
}

func IsPendingPreparation(o model.Order) bool {
	return !o.Prepared && !o.Served && !o.Released()
}

func IsPendingService(o model.Order) bool {
	return o.Prepared && !o.Served && !o.Released()
}

func PendingPreparation(orders []model.Order) []model.Order {
	return filter(orders, IsPendingPreparation)
}

func PendingService(orders []model.Order) []model.Order {
	return filter(orders, IsPendingService)
}

// Flatten lists the orders of every table, stamped with the owning table.
func Flatten(tables []model.Table) []model.Order {
	var out []model.Order
	for _, t := range tables {
		for _, o := range t.Orders {
			o.TableID = t.ID
			o.TableNumber = t.Number
			out = append(out, o)
		}
	}
	return out
}

// QuantityEditable mirrors the floor rule: paid lines are frozen, and lines
// that went through the kitchen cannot change size.
func QuantityEditable(o model.Order) bool {
	if o.Paid {
		return false
	}
	return o.Product.AlwaysPrepared || (!o.Prepared && !o.Served)
}

func AppendNote(existing, note string) string {
	if strings.TrimSpace(existing) == "" {
		return note
	}
	return existing + ", " + note
}

type ReleasedGroup struct {
	ReleasedAt  model.Millis    `json:"releasedAt"`
	TableNumber int             `json:"tableNumber"`
	Orders      []model.Order   `json:"orders"`
	Total       decimal.Decimal `json:"total"`
}

// GroupReleased groups released orders by release stamp, oldest first.
// A table release stamps every order with the same instant, so a group is
// one settled table visit.
func GroupReleased(orders []model.Order) []ReleasedGroup {
	index := map[model.Millis]int{}
	var groups []ReleasedGroup
	for _, o := range orders {
		if !o.Released() {
			continue
		}
		at := *o.ReleasedAt
		i, ok := index[at]
		if !ok {
			i = len(groups)
			index[at] = i
			groups = append(groups, ReleasedGroup{ReleasedAt: at, TableNumber: o.TableNumber})
		}
		groups[i].Orders = append(groups[i].Orders, o)
	}
	for i := range groups {
		groups[i].Total = Total(groups[i].Orders)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].ReleasedAt < groups[j].ReleasedAt
	})
	return groups
}

func LiquidationTotal(orders []model.Order) decimal.Decimal {
	return Total(Released(orders))
}

func filter(orders []model.Order, keep func(model.Order) bool) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func some(orders []model.Order, pred func(model.Order) bool) bool {
	for _, o := range orders {
		if pred(o) {
			return true
		}
	}
	return false
}
