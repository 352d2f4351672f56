package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID          int        `json:"id"`
	DocumentID  string     `json:"documentId"`
	Quantity    int        `json:"quantity"`
	Prepared    bool       `json:"prepared"`
	Served      bool       `json:"served"`
	Paid        bool       `json:"paid"`
	Product     Product    `json:"product"`
	Extras      []Extra    `json:"extras"`
	Notes       string     `json:"notes"`
	ReleasedAt  *Millis    `json:"releasedAt"`
	TableID     int        `json:"tableId,omitempty"`
	TableNumber int        `json:"tableNumber,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Released reports whether the order has left the active floor.
func (o Order) Released() bool {
	return o.ReleasedAt != nil
}

// UnmarshalJSON treats a null, missing or blank releasedAt as an active
// order.
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	aux := struct {
		*plain
		ReleasedAt json.RawMessage `json:"releasedAt"`
	}{plain: (*plain)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	o.ReleasedAt = nil
	raw := bytes.TrimSpace(aux.ReleasedAt)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || len(bytes.TrimSpace(bytes.Trim(raw, `"`))) == 0 {
		return nil
	}
	var m Millis
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("releasedAt: %w", err)
	}
	o.ReleasedAt = &m
	return nil
}

// UnitPrice is the product price plus every selected extra.
func (o Order) UnitPrice() decimal.Decimal {
	price := o.Product.Price
	for _, e := range o.Extras {
		price = price.Add(e.Price)
	}
	return price
}

// Millis is an epoch timestamp in milliseconds. The backend stores it as a
// biginteger, which arrives either as a JSON number or as a numeric string.
type Millis int64

func NewMillis(t time.Time) Millis {
	return Millis(t.UnixMilli())
}

func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m))
}

func (m Millis) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(m), 10)), nil
}

func (m *Millis) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 {
		return errors.New("parse millis: empty value")
	}
	if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*m = Millis(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse millis %q: %w", data, err)
	}
	*m = Millis(int64(f))
	return nil
}
