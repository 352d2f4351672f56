package cms

import (
	"context"

	"frontofhouse/internal/model"
)

// NewOrder is the create payload; relations are referenced by numeric id.
type NewOrder struct {
	Quantity int    `json:"quantity"`
	Prepared bool   `json:"prepared"`
	Served   bool   `json:"served"`
	Paid     bool   `json:"paid"`
	Product  int    `json:"product"`
	Extras   []int  `json:"extras"`
	Notes    string `json:"notes"`
	Table    int    `json:"table"`
}

// OrderPatch carries only the fields being changed.
type OrderPatch struct {
	Quantity   *int          `json:"quantity,omitempty"`
	Prepared   *bool         `json:"prepared,omitempty"`
	Served     *bool         `json:"served,omitempty"`
	Paid       *bool         `json:"paid,omitempty"`
	Notes      *string       `json:"notes,omitempty"`
	Extras     *[]int        `json:"extras,omitempty"`
	ReleasedAt *model.Millis `json:"releasedAt,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, o NewOrder) (*model.Order, error) {
	if o.Extras == nil {
		o.Extras = []int{}
	}
	var created model.Order
	if err := c.Create(ctx, CollectionOrders, o, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateOrder(ctx context.Context, documentID string, patch OrderPatch) error {
	return c.Update(ctx, CollectionOrders, documentID, patch, nil)
}

func (c *Client) DeleteOrder(ctx context.Context, documentID string) error {
	return c.Delete(ctx, CollectionOrders, documentID)
}
