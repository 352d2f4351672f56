package model

import "github.com/shopspring/decimal"

type Product struct {
	ID             int             `json:"id"`
	DocumentID     string          `json:"documentId"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	AlwaysPrepared bool            `json:"alwaysPrepared"`
	Category       *Category       `json:"category,omitempty"`
	Subcategory    *Subcategory    `json:"subcategory,omitempty"`
	Extras         []Extra         `json:"extras,omitempty"`
	QuickNotes     []QuickNote     `json:"quick_notes,omitempty"`
}

type Category struct {
	ID         int    `json:"id"`
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
}

type Subcategory struct {
	ID         int    `json:"id"`
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
}

type Extra struct {
	ID         int             `json:"id"`
	DocumentID string          `json:"documentId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
}

type QuickNote struct {
	ID         int    `json:"id"`
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
}
