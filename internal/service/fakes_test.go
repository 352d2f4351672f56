package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"frontofhouse/internal/cms"
	"frontofhouse/internal/model"
	"frontofhouse/internal/notify"
)

var fixedNow = time.Date(2024, 5, 1, 13, 30, 0, 0, time.UTC)

// fakeBackend keeps tables and their orders in memory, the way the content
// backend would return them with orders populated.
type fakeBackend struct {
	mu        sync.Mutex
	tables    []model.Table
	products  map[int]model.Product
	nextID    int
	failList  error
	failWrite map[string]error
	listCalls int
}

func newFakeBackend(products ...model.Product) *fakeBackend {
	b := &fakeBackend{
		products:  map[int]model.Product{},
		nextID:    100,
		failWrite: map[string]error{},
	}
	for _, p := range products {
		b.products[p.ID] = p
	}
	return b
}

func (b *fakeBackend) addTable(number int, orders ...model.Order) *fakeBackend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.tables = append(b.tables, model.Table{
		ID:         number,
		DocumentID: fmt.Sprintf("table-%d", number),
		Number:     number,
		Orders:     orders,
	})
	return b
}

func (b *fakeBackend) Tables(context.Context) ([]model.Table, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++
	if b.failList != nil {
		return nil, b.failList
	}
	out := make([]model.Table, len(b.tables))
	for i, t := range b.tables {
		t.Orders = append([]model.Order(nil), t.Orders...)
		out[i] = t
	}
	return out, nil
}

func (b *fakeBackend) TableByNumber(ctx context.Context, number int) (*model.Table, error) {
	tables, err := b.Tables(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if t.Number == number {
			return &t, nil
		}
	}
	return nil, nil
}

func (b *fakeBackend) CreateTable(_ context.Context, number int) (*model.Table, error) {
	b.addTable(number)
	return &model.Table{ID: number, DocumentID: fmt.Sprintf("table-%d", number), Number: number}, nil
}

func (b *fakeBackend) DeleteTable(_ context.Context, documentID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, t := range b.tables {
		if t.DocumentID == documentID {
			b.tables = append(b.tables[:i], b.tables[i+1:]...)
			return nil
		}
	}
	return &cms.APIError{Status: 404, Name: "NotFoundError", Message: "Not Found"}
}

func (b *fakeBackend) CreateOrder(_ context.Context, o cms.NewOrder) (*model.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	created := model.Order{
		ID:         b.nextID,
		DocumentID: fmt.Sprintf("order-%d", b.nextID),
		Quantity:   o.Quantity,
		Prepared:   o.Prepared,
		Served:     o.Served,
		Paid:       o.Paid,
		Notes:      o.Notes,
		Product:    b.products[o.Product],
	}
	for i := range b.tables {
		if b.tables[i].ID == o.Table {
			b.tables[i].Orders = append(b.tables[i].Orders, created)
			return &created, nil
		}
	}
	return nil, &cms.APIError{Status: 400, Name: "ValidationError", Message: "table not found"}
}

func (b *fakeBackend) UpdateOrder(ctx context.Context, documentID string, p cms.OrderPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failWrite[documentID]; err != nil {
		return err
	}
	o := b.order(documentID)
	if o == nil {
		return &cms.APIError{Status: 404, Name: "NotFoundError", Message: "Not Found"}
	}
	if p.Quantity != nil {
		o.Quantity = *p.Quantity
	}
	if p.Prepared != nil {
		o.Prepared = *p.Prepared
	}
	if p.Served != nil {
		o.Served = *p.Served
	}
	if p.Paid != nil {
		o.Paid = *p.Paid
	}
	if p.Notes != nil {
		o.Notes = *p.Notes
	}
	if p.Extras != nil {
		offered := o.Product.Extras
		if current, ok := b.products[o.Product.ID]; ok {
			offered = current.Extras
		}
		o.Extras = nil
		for _, id := range *p.Extras {
			for _, e := range offered {
				if e.ID == id {
					o.Extras = append(o.Extras, e)
				}
			}
		}
	}
	if p.ReleasedAt != nil {
		at := *p.ReleasedAt
		o.ReleasedAt = &at
	}
	return nil
}

func (b *fakeBackend) DeleteOrder(_ context.Context, documentID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failWrite[documentID]; err != nil {
		return err
	}
	for i := range b.tables {
		for j, o := range b.tables[i].Orders {
			if o.DocumentID == documentID {
				b.tables[i].Orders = append(b.tables[i].Orders[:j], b.tables[i].Orders[j+1:]...)
				return nil
			}
		}
	}
	return &cms.APIError{Status: 404, Name: "NotFoundError", Message: "Not Found"}
}

func (b *fakeBackend) order(documentID string) *model.Order {
	for i := range b.tables {
		for j := range b.tables[i].Orders {
			if b.tables[i].Orders[j].DocumentID == documentID {
				return &b.tables[i].Orders[j]
			}
		}
	}
	return nil
}

func (b *fakeBackend) get(documentID string) (model.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o := b.order(documentID); o != nil {
		return *o, true
	}
	return model.Order{}, false
}

func (b *fakeBackend) Product(_ context.Context, id int) (model.Product, error) {
	p, ok := b.products[id]
	if !ok {
		return model.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (b *fakeBackend) Invalidate() {}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.Key)
	}
	return keys
}

var errBackendDown = errors.New("connection refused")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var (
	burger = model.Product{
		ID:    1,
		Name:  "hamburguesa",
		Price: dec("9.50"),
		Extras: []model.Extra{
			{ID: 11, Name: "queso", Price: dec("1.00")},
			{ID: 12, Name: "bacon", Price: dec("1.50")},
		},
	}
	beer = model.Product{ID: 2, Name: "caña", Price: dec("2.20"), AlwaysPrepared: true}
)

func newOrder(docID string, p model.Product, qty int) model.Order {
	return model.Order{ID: len(docID), DocumentID: docID, Quantity: qty, Product: p}
}

func releasedAt(t time.Time) *model.Millis {
	m := model.NewMillis(t)
	return &m
}

func newFloor(b *fakeBackend, pub notify.Publisher) *FloorService {
	s := NewFloorService(b, b, pub)
	s.now = func() time.Time { return fixedNow }
	return s
}
