package cms

import (
	"context"
	"net/url"

	"frontofhouse/internal/model"
)

func byName() url.Values {
	q := url.Values{}
	q.Set("sort", "name:asc")
	return q
}

func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	q := byName()
	q.Set("populate[0]", "category")
	q.Set("populate[1]", "subcategory")
	q.Set("populate[2]", "extras")
	q.Set("populate[3]", "quick_notes")
	return list[model.Product](ctx, c, CollectionProducts, q)
}

func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	return list[model.Category](ctx, c, CollectionCategories, byName())
}

func (c *Client) Subcategories(ctx context.Context) ([]model.Subcategory, error) {
	return list[model.Subcategory](ctx, c, CollectionSubcategories, byName())
}

func (c *Client) Extras(ctx context.Context) ([]model.Extra, error) {
	return list[model.Extra](ctx, c, CollectionExtras, byName())
}

func (c *Client) QuickNotes(ctx context.Context) ([]model.QuickNote, error) {
	return list[model.QuickNote](ctx, c, CollectionQuickNotes, byName())
}
