package model

type Table struct {
	ID         int     `json:"id"`
	DocumentID string  `json:"documentId"`
	Number     int     `json:"number"`
	Orders     []Order `json:"orders"`
}
