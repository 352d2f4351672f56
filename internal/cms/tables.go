package cms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"frontofhouse/internal/model"
)

func tableQuery() url.Values {
	q := url.Values{}
	q.Set("sort", "number:asc")
	q.Set("populate[orders][populate][0]", "product")
	q.Set("populate[orders][populate][1]", "extras")
	return q
}

// Tables returns every table with its orders, released ones included.
func (c *Client) Tables(ctx context.Context) ([]model.Table, error) {
	return list[model.Table](ctx, c, CollectionTables, tableQuery())
}

// TableByNumber returns nil when no table carries the number.
func (c *Client) TableByNumber(ctx context.Context, number int) (*model.Table, error) {
	q := tableQuery()
	q.Set("filters[number][$eq]", strconv.Itoa(number))

	var resp Response[model.Table]
	if err := c.do(ctx, http.MethodGet, CollectionTables, q, nil, &resp); err != nil {
		return nil, fmt.Errorf("table by number %d: %w", number, err)
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

func (c *Client) CreateTable(ctx context.Context, number int) (*model.Table, error) {
	var t model.Table
	if err := c.Create(ctx, CollectionTables, map[string]any{"number": number}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTable(ctx context.Context, documentID string) error {
	return c.Delete(ctx, CollectionTables, documentID)
}
