package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"frontofhouse/internal/cms"
	"frontofhouse/internal/model"
	"frontofhouse/internal/notify"
	"frontofhouse/internal/summary"
)

// fanOut bounds concurrent writes to the backend during a release or a
// liquidation.
const fanOut = 4

// Backend is the slice of the content backend the floor needs. Satisfied by
// *cms.Client.
type Backend interface {
	Tables(ctx context.Context) ([]model.Table, error)
	TableByNumber(ctx context.Context, number int) (*model.Table, error)
	CreateTable(ctx context.Context, number int) (*model.Table, error)
	DeleteTable(ctx context.Context, documentID string) error
	CreateOrder(ctx context.Context, o cms.NewOrder) (*model.Order, error)
	UpdateOrder(ctx context.Context, documentID string, patch cms.OrderPatch) error
	DeleteOrder(ctx context.Context, documentID string) error
}

// ProductLookup resolves catalog products. Satisfied by *CatalogService.
type ProductLookup interface {
	Product(ctx context.Context, id int) (model.Product, error)
	Invalidate()
}

type Snapshot struct {
	Tables      []model.Table
	Orders      []model.Order
	RefreshedAt time.Time
}

type TableSummary struct {
	ID                 int             `json:"id"`
	DocumentID         string          `json:"documentId"`
	Number             int             `json:"number"`
	Occupied           bool            `json:"occupied"`
	Total              decimal.Decimal `json:"total"`
	UnpaidTotal        decimal.Decimal `json:"unpaidTotal"`
	Status             summary.Status  `json:"status"`
	Overlaps           bool            `json:"overlaps"`
	PendingPreparation int             `json:"pendingPreparation"`
	PendingService     int             `json:"pendingService"`
}

type TableDetail struct {
	TableSummary
	Orders []model.Order `json:"orders"`
}

type ReleasedView struct {
	Groups []summary.ReleasedGroup `json:"groups"`
	Count  int                     `json:"count"`
	Total  decimal.Decimal         `json:"total"`
}

// FloorService owns the last known floor state. It never patches that state
// locally: every successful write is followed by a refetch from the backend.
type FloorService struct {
	backend   Backend
	products  ProductLookup
	publisher notify.Publisher
	now       func() time.Time

	refreshMu sync.Mutex

	mu          sync.RWMutex
	tables      []model.Table
	loaded      bool
	refreshedAt time.Time
}

func NewFloorService(backend Backend, products ProductLookup, publisher notify.Publisher) *FloorService {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &FloorService{
		backend:   backend,
		products:  products,
		publisher: publisher,
		now:       time.Now,
	}
}

// Refresh refetches every table with its orders and replaces the snapshot.
func (s *FloorService) Refresh(ctx context.Context) (*Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	tables, err := s.backend.Tables(ctx)
	if err != nil {
		s.mu.Lock()
		s.loaded = false
		s.mu.Unlock()
		return nil, fmt.Errorf("refresh floor: %w", err)
	}

	s.mu.Lock()
	s.tables = tables
	s.loaded = true
	s.refreshedAt = s.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	return snap, nil
}

// Snapshot returns the cached floor, loading it on first use or after a
// failed refresh.
func (s *FloorService) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	if s.loaded {
		snap := s.snapshotLocked()
		s.mu.RUnlock()
		return snap, nil
	}
	s.mu.RUnlock()
	return s.Refresh(ctx)
}

func (s *FloorService) snapshotLocked() *Snapshot {
	return &Snapshot{
		Tables:      s.tables,
		Orders:      summary.Flatten(s.tables),
		RefreshedAt: s.refreshedAt,
	}
}

func (s *FloorService) Overview(ctx context.Context) ([]TableSummary, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TableSummary, 0, len(snap.Tables))
	for _, t := range snap.Tables {
		out = append(out, summarize(t))
	}
	return out, nil
}

func (s *FloorService) Table(ctx context.Context, id int) (*TableDetail, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	t, ok := findTable(snap.Tables, id)
	if !ok {
		return nil, ErrTableNotFound
	}
	return detail(t), nil
}

// TableByNumber asks the backend directly instead of the snapshot.
func (s *FloorService) TableByNumber(ctx context.Context, number int) (*TableDetail, error) {
	t, err := s.backend.TableByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTableNotFound
	}
	return detail(*t), nil
}

func summarize(t model.Table) TableSummary {
	active := summary.Active(t.Orders)
	return TableSummary{
		ID:                 t.ID,
		DocumentID:         t.DocumentID,
		Number:             t.Number,
		Occupied:           len(active) > 0,
		Total:              summary.Total(active),
		UnpaidTotal:        summary.UnpaidTotal(active),
		Status:             summary.Classify(active),
		Overlaps:           summary.Overlaps(active),
		PendingPreparation: len(summary.PendingPreparation(active)),
		PendingService:     len(summary.PendingService(active)),
	}
}

func detail(t model.Table) *TableDetail {
	orders := summary.Active(summary.Flatten([]model.Table{t}))
	return &TableDetail{TableSummary: summarize(t), Orders: orders}
}

func findTable(tables []model.Table, id int) (model.Table, bool) {
	for _, t := range tables {
		if t.ID == id {
			return t, true
		}
	}
	return model.Table{}, false
}

func (s *FloorService) Kitchen(ctx context.Context) ([]model.Order, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return summary.PendingPreparation(snap.Orders), nil
}

func (s *FloorService) Service(ctx context.Context) ([]model.Order, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return summary.PendingService(snap.Orders), nil
}

func (s *FloorService) Released(ctx context.Context) (*ReleasedView, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	released := summary.Released(snap.Orders)
	return &ReleasedView{
		Groups: summary.GroupReleased(released),
		Count:  len(released),
		Total:  summary.LiquidationTotal(released),
	}, nil
}

func (s *FloorService) AddProduct(ctx context.Context, tableID, productID int) (*model.Order, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	table, ok := findTable(snap.Tables, tableID)
	if !ok {
		return nil, ErrTableNotFound
	}

	product, err := s.products.Product(ctx, productID)
	if err != nil {
		return nil, err
	}

	created, err := s.backend.CreateOrder(ctx, cms.NewOrder{
		Quantity: 1,
		Prepared: product.AlwaysPrepared,
		Product:  product.ID,
		Extras:   []int{},
		Table:    table.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.afterWrite(ctx, notify.Event{
		Key:         notify.OrderAdded,
		OrderID:     created.DocumentID,
		TableNumber: table.Number,
		Product:     product.Name,
		Quantity:    1,
	})
	return created, nil
}

func (s *FloorService) UpdateStatus(ctx context.Context, documentID string, prepared, served bool) error {
	o, err := s.activeOrder(ctx, documentID)
	if err != nil {
		return err
	}
	if o.Product.AlwaysPrepared && !prepared {
		return ErrAlwaysPrepared
	}
	if served && !prepared && !o.Product.AlwaysPrepared {
		return ErrNotPrepared
	}

	var key string
	switch {
	case served != o.Served && served:
		key = notify.OrderServed
	case served != o.Served:
		key = notify.OrderUnserved
	case prepared != o.Prepared && prepared:
		key = notify.OrderPrepared
	case prepared != o.Prepared:
		key = notify.OrderUnprepared
	default:
		return nil
	}

	if err := s.backend.UpdateOrder(ctx, documentID, cms.OrderPatch{Prepared: &prepared, Served: &served}); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	s.afterWrite(ctx, orderEvent(key, o))
	return nil
}

// UpdateQuantity resizes a line; zero removes it.
func (s *FloorService) UpdateQuantity(ctx context.Context, documentID string, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	o, err := s.activeOrder(ctx, documentID)
	if err != nil {
		return err
	}
	if o.Paid {
		return ErrOrderPaid
	}
	if !summary.QuantityEditable(o) {
		return ErrOrderLocked
	}

	if quantity == 0 {
		if err := s.backend.DeleteOrder(ctx, documentID); err != nil {
			return fmt.Errorf("remove order: %w", err)
		}
		s.afterWrite(ctx, orderEvent(notify.OrderRemoved, o))
		return nil
	}

	if err := s.backend.UpdateOrder(ctx, documentID, cms.OrderPatch{Quantity: &quantity}); err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	o.Quantity = quantity
	s.afterWrite(ctx, orderEvent(notify.OrderUpdated, o))
	return nil
}

func (s *FloorService) UpdateNotes(ctx context.Context, documentID, notes string) error {
	o, err := s.activeOrder(ctx, documentID)
	if err != nil {
		return err
	}
	return s.writeNotes(ctx, o, notes)
}

// AppendQuickNote adds a canned note after whatever the line already says.
func (s *FloorService) AppendQuickNote(ctx context.Context, documentID, note string) error {
	o, err := s.activeOrder(ctx, documentID)
	if err != nil {
		return err
	}
	return s.writeNotes(ctx, o, summary.AppendNote(o.Notes, note))
}

func (s *FloorService) writeNotes(ctx context.Context, o model.Order, notes string) error {
	if err := s.backend.UpdateOrder(ctx, o.DocumentID, cms.OrderPatch{Notes: &notes}); err != nil {
		return fmt.Errorf("update notes: %w", err)
	}
	s.afterWrite(ctx, orderEvent(notify.OrderUpdated, o))
	return nil
}

// UpdateExtras replaces the selected extras; each must be offered by the
// ordered product.
func (s *FloorService) UpdateExtras(ctx context.Context, documentID string, extraIDs []int) error {
	o, err := s.activeOrder(ctx, documentID)
	if err != nil {
		return err
	}

	product, err := s.products.Product(ctx, o.Product.ID)
	if err != nil {
		return err
	}
	if _, ok := missingExtra(product, extraIDs); !ok {
		// The catalog may have gained the extra since it was cached.
		s.products.Invalidate()
		if product, err = s.products.Product(ctx, o.Product.ID); err != nil {
			return err
		}
		if id, ok := missingExtra(product, extraIDs); !ok {
			return fmt.Errorf("%w: %d", ErrExtraNotAvailable, id)
		}
	}
	ids := append([]int{}, extraIDs...)

	if err := s.backend.UpdateOrder(ctx, documentID, cms.OrderPatch{Extras: &ids}); err != nil {
		return fmt.Errorf("update extras: %w", err)
	}
	s.afterWrite(ctx, orderEvent(notify.OrderUpdated, o))
	return nil
}

// missingExtra reports the first id the product does not offer; ok is true
// when every id is offered.
func missingExtra(p model.Product, extraIDs []int) (int, bool) {
	offered := make(map[int]bool, len(p.Extras))
	for _, e := range p.Extras {
		offered[e.ID] = true
	}
	for _, id := range extraIDs {
		if !offered[id] {
			return id, false
		}
	}
	return 0, true
}

func (s *FloorService) RemoveOrder(ctx context.Context, documentID string) error {
	o, err := s.activeOrder(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.backend.DeleteOrder(ctx, documentID); err != nil {
		return fmt.Errorf("remove order: %w", err)
	}
	s.afterWrite(ctx, orderEvent(notify.OrderRemoved, o))
	return nil
}

func (s *FloorService) TogglePaid(ctx context.Context, documentID string) error {
	o, err := s.activeOrder(ctx, documentID)
	if err != nil {
		return err
	}
	paid := !o.Paid
	if err := s.backend.UpdateOrder(ctx, documentID, cms.OrderPatch{Paid: &paid}); err != nil {
		return fmt.Errorf("toggle paid: %w", err)
	}
	key := notify.OrderPaid
	if !paid {
		key = notify.OrderUnpaid
	}
	s.afterWrite(ctx, orderEvent(key, o))
	return nil
}

// ReleaseTable stamps every active order of the table with one shared
// release instant, which later groups them as a single settled visit.
func (s *FloorService) ReleaseTable(ctx context.Context, tableID int) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	table, ok := findTable(snap.Tables, tableID)
	if !ok {
		return ErrTableNotFound
	}
	active := summary.Active(table.Orders)
	if len(active) == 0 {
		return ErrNothingToRelease
	}

	// Every stamp is attempted even after a failure; a retry then only
	// touches the leftovers.
	at := model.NewMillis(s.now())
	var g errgroup.Group
	g.SetLimit(fanOut)
	for _, o := range active {
		o := o
		g.Go(func() error {
			if err := s.backend.UpdateOrder(ctx, o.DocumentID, cms.OrderPatch{ReleasedAt: &at}); err != nil {
				return fmt.Errorf("stamp order %s: %w", o.DocumentID, err)
			}
			return nil
		})
	}
	werr := g.Wait()

	if werr != nil {
		s.refreshAfterWrite(ctx)
		return fmt.Errorf("release table %d: %w", table.Number, werr)
	}

	s.afterWrite(ctx, notify.Event{
		Key:         notify.TableReleased,
		TableNumber: table.Number,
		Count:       len(active),
		Total:       summary.Total(active).StringFixed(2),
	})
	return nil
}

// AddTable appends a table numbered one past the highest existing number.
func (s *FloorService) AddTable(ctx context.Context) (*model.Table, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	next := 1
	for _, t := range snap.Tables {
		if t.Number >= next {
			next = t.Number + 1
		}
	}

	created, err := s.backend.CreateTable(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	s.afterWrite(ctx, notify.Event{Key: notify.TableAdded, TableNumber: next})
	return created, nil
}

// DeleteLastTable removes the highest-numbered table. Any order still linked
// to it, released or not, blocks the removal.
func (s *FloorService) DeleteLastTable(ctx context.Context) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if len(snap.Tables) == 0 {
		return ErrTableNotFound
	}
	last := snap.Tables[0]
	for _, t := range snap.Tables[1:] {
		if t.Number > last.Number {
			last = t
		}
	}
	if len(last.Orders) > 0 {
		return ErrTableInUse
	}

	if err := s.backend.DeleteTable(ctx, last.DocumentID); err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	s.afterWrite(ctx, notify.Event{Key: notify.TableRemoved, TableNumber: last.Number})
	return nil
}

// removeOrders deletes the given orders concurrently and reports which ones
// are gone. The error, if any, is the first backend failure.
func (s *FloorService) removeOrders(ctx context.Context, orders []model.Order) ([]model.Order, error) {
	var (
		mu      sync.Mutex
		removed []model.Order
		g       errgroup.Group
	)
	g.SetLimit(fanOut)
	for _, o := range orders {
		o := o
		g.Go(func() error {
			if err := s.backend.DeleteOrder(ctx, o.DocumentID); err != nil && !cms.IsNotFound(err) {
				return fmt.Errorf("remove order %s: %w", o.DocumentID, err)
			}
			mu.Lock()
			removed = append(removed, o)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return removed, err
}

func (s *FloorService) activeOrder(ctx context.Context, documentID string) (model.Order, error) {
	o, err := s.findOrder(ctx, documentID)
	if err != nil {
		return model.Order{}, err
	}
	if o.Released() {
		return model.Order{}, ErrOrderReleased
	}
	return o, nil
}

// findOrder looks in the snapshot first and refetches once on a miss.
func (s *FloorService) findOrder(ctx context.Context, documentID string) (model.Order, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return model.Order{}, err
	}
	if o, ok := orderByDocument(snap.Orders, documentID); ok {
		return o, nil
	}

	snap, err = s.Refresh(ctx)
	if err != nil {
		return model.Order{}, err
	}
	if o, ok := orderByDocument(snap.Orders, documentID); ok {
		return o, nil
	}
	return model.Order{}, ErrOrderNotFound
}

func orderByDocument(orders []model.Order, documentID string) (model.Order, bool) {
	for _, o := range orders {
		if o.DocumentID == documentID {
			return o, true
		}
	}
	return model.Order{}, false
}

func orderEvent(key string, o model.Order) notify.Event {
	return notify.Event{
		Key:         key,
		OrderID:     o.DocumentID,
		TableNumber: o.TableNumber,
		Product:     o.Product.Name,
		Quantity:    o.Quantity,
	}
}

func (s *FloorService) afterWrite(ctx context.Context, e notify.Event) {
	s.refreshAfterWrite(ctx)
	s.publish(ctx, e)
}

// refreshAfterWrite keeps the write successful even when the refetch fails;
// the snapshot is then marked stale and reloaded on next read.
func (s *FloorService) refreshAfterWrite(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		slog.Warn("floor refresh after write failed", "error", err)
	}
}

func (s *FloorService) publish(ctx context.Context, e notify.Event) {
	if e.At.IsZero() {
		e.At = s.now().UTC()
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish event", "key", e.Key, "error", err)
	}
}
