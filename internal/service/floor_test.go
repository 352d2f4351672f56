package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontofhouse/internal/cms"
	"frontofhouse/internal/model"
	"frontofhouse/internal/notify"
	"frontofhouse/internal/summary"
)

func TestFloor_AddProduct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		product      model.Product
		wantPrepared bool
	}{
		{name: "kitchen product", product: burger, wantPrepared: false},
		{name: "always prepared product", product: beer, wantPrepared: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newFakeBackend(burger, beer).addTable(1)
			pub := &recordingPublisher{}
			floor := newFloor(b, pub)
			ctx := context.Background()

			created, err := floor.AddProduct(ctx, 1, tt.product.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrepared, created.Prepared)
			assert.Equal(t, 1, created.Quantity)
			assert.False(t, created.Served)
			assert.False(t, created.Paid)

			table, err := floor.Table(ctx, 1)
			require.NoError(t, err)
			require.Len(t, table.Orders, 1, "snapshot refreshed after write")
			assert.Equal(t, 1, table.Orders[0].TableNumber)
			assert.Equal(t, []string{notify.OrderAdded}, pub.keys())
		})
	}
}

func TestFloor_AddProduct_UnknownTable(t *testing.T) {
	t.Parallel()

	floor := newFloor(newFakeBackend(burger).addTable(1), nil)
	_, err := floor.AddProduct(context.Background(), 9, burger.ID)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestFloor_Overview_CountsActiveOrdersOnly(t *testing.T) {
	t.Parallel()

	paid := newOrder("a", burger, 2)
	paid.Prepared, paid.Served, paid.Paid = true, true, true
	waiting := newOrder("b", beer, 1)
	waiting.Prepared = true
	gone := newOrder("c", burger, 5)
	gone.ReleasedAt = releasedAt(fixedNow)

	b := newFakeBackend(burger, beer).addTable(1, paid, waiting, gone).addTable(2, gone)
	floor := newFloor(b, nil)

	overview, err := floor.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, overview, 2)

	first := overview[0]
	assert.True(t, first.Occupied)
	assert.True(t, dec("21.20").Equal(first.Total), "total %s", first.Total)
	assert.True(t, dec("2.20").Equal(first.UnpaidTotal), "unpaid %s", first.UnpaidTotal)
	assert.Equal(t, summary.StatusPendingService, first.Status)
	assert.Equal(t, 1, first.PendingService)

	second := overview[1]
	assert.False(t, second.Occupied)
	assert.Equal(t, summary.StatusEmpty, second.Status)
	assert.True(t, second.Total.IsZero())
}

func TestFloor_UpdateStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		product  model.Product
		prepared bool
		served   bool
		wantErr  error
		wantKey  string
	}{
		{name: "prepare", product: burger, prepared: true, wantKey: notify.OrderPrepared},
		{name: "serve unprepared", product: burger, served: true, wantErr: ErrNotPrepared},
		{name: "serve prepared", product: burger, prepared: true, served: true, wantKey: notify.OrderServed},
		{name: "unprepare always prepared", product: beer, prepared: false, wantErr: ErrAlwaysPrepared},
		{name: "serve always prepared", product: beer, prepared: true, served: true, wantKey: notify.OrderServed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o := newOrder("o1", tt.product, 1)
			o.Prepared = tt.product.AlwaysPrepared
			b := newFakeBackend(tt.product).addTable(1, o)
			pub := &recordingPublisher{}
			floor := newFloor(b, pub)

			err := floor.UpdateStatus(context.Background(), "o1", tt.prepared, tt.served)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, pub.keys())
				return
			}
			require.NoError(t, err)

			stored, _ := b.get("o1")
			assert.Equal(t, tt.prepared, stored.Prepared)
			assert.Equal(t, tt.served, stored.Served)
			assert.Equal(t, []string{tt.wantKey}, pub.keys())
		})
	}
}

func TestFloor_UpdateStatus_NoChangeIsNoop(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(burger).addTable(1, newOrder("o1", burger, 1))
	pub := &recordingPublisher{}
	floor := newFloor(b, pub)

	require.NoError(t, floor.UpdateStatus(context.Background(), "o1", false, false))
	assert.Empty(t, pub.keys())
}

func TestFloor_MutationsRejectReleasedOrders(t *testing.T) {
	t.Parallel()

	o := newOrder("o1", burger, 1)
	o.ReleasedAt = releasedAt(fixedNow)
	floor := newFloor(newFakeBackend(burger).addTable(1, o), nil)
	ctx := context.Background()

	assert.ErrorIs(t, floor.UpdateStatus(ctx, "o1", true, false), ErrOrderReleased)
	assert.ErrorIs(t, floor.UpdateQuantity(ctx, "o1", 2), ErrOrderReleased)
	assert.ErrorIs(t, floor.UpdateNotes(ctx, "o1", "sin sal"), ErrOrderReleased)
	assert.ErrorIs(t, floor.UpdateExtras(ctx, "o1", nil), ErrOrderReleased)
	assert.ErrorIs(t, floor.TogglePaid(ctx, "o1"), ErrOrderReleased)
	assert.ErrorIs(t, floor.RemoveOrder(ctx, "o1"), ErrOrderReleased)
}

func TestFloor_UpdateQuantity(t *testing.T) {
	t.Parallel()

	fresh := newOrder("fresh", burger, 1)
	paid := newOrder("paid", burger, 1)
	paid.Paid = true
	cooked := newOrder("cooked", burger, 1)
	cooked.Prepared = true
	drink := newOrder("drink", beer, 1)
	drink.Prepared, drink.Served = true, true

	b := newFakeBackend(burger, beer).addTable(1, fresh, paid, cooked, drink)
	floor := newFloor(b, nil)
	ctx := context.Background()

	require.NoError(t, floor.UpdateQuantity(ctx, "fresh", 3))
	stored, _ := b.get("fresh")
	assert.Equal(t, 3, stored.Quantity)

	require.NoError(t, floor.UpdateQuantity(ctx, "drink", 4), "always prepared lines stay editable")

	assert.ErrorIs(t, floor.UpdateQuantity(ctx, "fresh", -1), ErrInvalidQuantity)
	assert.ErrorIs(t, floor.UpdateQuantity(ctx, "paid", 2), ErrOrderPaid)
	assert.ErrorIs(t, floor.UpdateQuantity(ctx, "cooked", 2), ErrOrderLocked)
	assert.ErrorIs(t, floor.UpdateQuantity(ctx, "missing", 2), ErrOrderNotFound)
}

func TestFloor_UpdateQuantity_ZeroRemoves(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(burger).addTable(1, newOrder("o1", burger, 2))
	pub := &recordingPublisher{}
	floor := newFloor(b, pub)

	require.NoError(t, floor.UpdateQuantity(context.Background(), "o1", 0))

	_, ok := b.get("o1")
	assert.False(t, ok)
	assert.Equal(t, []string{notify.OrderRemoved}, pub.keys())

	table, err := floor.Table(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, table.Orders)
}

func TestFloor_Notes(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(burger).addTable(1, newOrder("o1", burger, 1))
	floor := newFloor(b, nil)
	ctx := context.Background()

	require.NoError(t, floor.AppendQuickNote(ctx, "o1", "sin cebolla"))
	require.NoError(t, floor.AppendQuickNote(ctx, "o1", "poco hecha"))
	stored, _ := b.get("o1")
	assert.Equal(t, "sin cebolla, poco hecha", stored.Notes)

	require.NoError(t, floor.UpdateNotes(ctx, "o1", ""))
	stored, _ = b.get("o1")
	assert.Empty(t, stored.Notes)
}

func TestFloor_UpdateExtras(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(burger).addTable(1, newOrder("o1", burger, 2))
	floor := newFloor(b, nil)
	ctx := context.Background()

	require.NoError(t, floor.UpdateExtras(ctx, "o1", []int{11, 12}))
	table, err := floor.Table(ctx, 1)
	require.NoError(t, err)
	assert.True(t, dec("24").Equal(table.Total), "total %s", table.Total)

	err = floor.UpdateExtras(ctx, "o1", []int{99})
	assert.ErrorIs(t, err, ErrExtraNotAvailable)
}

func TestFloor_UpdateExtras_ReloadsCatalogOnMiss(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(burger).addTable(1, newOrder("o1", burger, 1))
	catalogBackend := &fakeCatalog{products: []model.Product{burger}}
	catalog := NewCatalogService(catalogBackend)
	floor := NewFloorService(b, catalog, nil)
	floor.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	_, err := catalog.Product(ctx, burger.ID)
	require.NoError(t, err)

	edited := burger
	edited.Extras = append(append([]model.Extra{}, burger.Extras...), model.Extra{ID: 13, Name: "huevo", Price: dec("0.80")})
	catalogBackend.products = []model.Product{edited}
	b.mu.Lock()
	b.products[burger.ID] = edited
	b.mu.Unlock()

	require.NoError(t, floor.UpdateExtras(ctx, "o1", []int{13}))
	assert.Equal(t, 2, catalogBackend.productCalls)

	stored, _ := b.get("o1")
	require.Len(t, stored.Extras, 1)
	assert.Equal(t, 13, stored.Extras[0].ID)

	err = floor.UpdateExtras(ctx, "o1", []int{99})
	assert.ErrorIs(t, err, ErrExtraNotAvailable)
	assert.Equal(t, 3, catalogBackend.productCalls)
}

func TestFloor_TogglePaid(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(burger).addTable(1, newOrder("o1", burger, 1))
	pub := &recordingPublisher{}
	floor := newFloor(b, pub)
	ctx := context.Background()

	require.NoError(t, floor.TogglePaid(ctx, "o1"))
	stored, _ := b.get("o1")
	assert.True(t, stored.Paid)

	require.NoError(t, floor.TogglePaid(ctx, "o1"))
	stored, _ = b.get("o1")
	assert.False(t, stored.Paid)

	assert.Equal(t, []string{notify.OrderPaid, notify.OrderUnpaid}, pub.keys())
}

func TestFloor_ReleaseTable_StampsActiveOrdersOnly(t *testing.T) {
	t.Parallel()

	earlier := fixedNow.Add(-2 * time.Hour)
	old := newOrder("old", burger, 1)
	old.ReleasedAt = releasedAt(earlier)

	b := newFakeBackend(burger, beer).addTable(1, old, newOrder("a", burger, 1), newOrder("b", beer, 2))
	pub := &recordingPublisher{}
	floor := newFloor(b, pub)
	ctx := context.Background()

	require.NoError(t, floor.ReleaseTable(ctx, 1))

	want := model.NewMillis(fixedNow)
	for _, id := range []string{"a", "b"} {
		o, _ := b.get(id)
		require.NotNil(t, o.ReleasedAt, id)
		assert.Equal(t, want, *o.ReleasedAt, id)
	}
	kept, _ := b.get("old")
	assert.Equal(t, model.NewMillis(earlier), *kept.ReleasedAt)

	released, err := floor.Released(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, released.Count)
	require.Len(t, released.Groups, 2)
	assert.Len(t, released.Groups[1].Orders, 2)

	assert.ErrorIs(t, floor.ReleaseTable(ctx, 1), ErrNothingToRelease)
	assert.ErrorIs(t, floor.ReleaseTable(ctx, 7), ErrTableNotFound)
	assert.Equal(t, []string{notify.TableReleased}, pub.keys())
}

func TestFloor_ReleaseTable_BackendFailure(t *testing.T) {
	t.Parallel()

	orders := []model.Order{newOrder("a", burger, 1)}
	for i := 0; i < 2*fanOut; i++ {
		orders = append(orders, newOrder(fmt.Sprintf("o%d", i), beer, 1))
	}
	b := newFakeBackend(burger, beer).addTable(1, orders...)
	b.failWrite["a"] = &cms.APIError{Status: 500, Message: "boom"}
	pub := &recordingPublisher{}
	floor := newFloor(b, pub)
	ctx := context.Background()

	err := floor.ReleaseTable(ctx, 1)
	require.Error(t, err)
	assert.Empty(t, pub.keys())

	want := model.NewMillis(fixedNow)
	for _, o := range orders[1:] {
		stored, _ := b.get(o.DocumentID)
		require.NotNil(t, stored.ReleasedAt, "%s stamped despite the failure", o.DocumentID)
		assert.Equal(t, want, *stored.ReleasedAt)
	}

	b.mu.Lock()
	delete(b.failWrite, "a")
	b.mu.Unlock()
	floor.now = func() time.Time { return fixedNow.Add(time.Minute) }

	require.NoError(t, floor.ReleaseTable(ctx, 1))
	released, err := floor.Released(ctx)
	require.NoError(t, err)
	assert.Len(t, released.Groups, 2, "only the failed order carries the retry instant")
	assert.Len(t, released.Groups[1].Orders, 1)
}

func TestFloor_Tables(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(burger).addTable(1).addTable(4, newOrder("a", burger, 1))
	floor := newFloor(b, nil)
	ctx := context.Background()

	created, err := floor.AddTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, created.Number)

	require.NoError(t, floor.DeleteLastTable(ctx))
	assert.ErrorIs(t, floor.DeleteLastTable(ctx), ErrTableInUse)

	overview, err := floor.Overview(ctx)
	require.NoError(t, err)
	assert.Len(t, overview, 2)
}

func TestFloor_DeleteLastTable_Empty(t *testing.T) {
	t.Parallel()

	floor := newFloor(newFakeBackend(), nil)
	assert.ErrorIs(t, floor.DeleteLastTable(context.Background()), ErrTableNotFound)
}

func TestFloor_KitchenAndService(t *testing.T) {
	t.Parallel()

	cooking := newOrder("cooking", burger, 1)
	ready := newOrder("ready", burger, 1)
	ready.Prepared = true
	done := newOrder("done", beer, 1)
	done.Prepared, done.Served = true, true

	b := newFakeBackend(burger, beer).addTable(1, cooking, ready).addTable(2, done)
	floor := newFloor(b, nil)
	ctx := context.Background()

	kitchen, err := floor.Kitchen(ctx)
	require.NoError(t, err)
	require.Len(t, kitchen, 1)
	assert.Equal(t, "cooking", kitchen[0].DocumentID)

	service, err := floor.Service(ctx)
	require.NoError(t, err)
	require.Len(t, service, 1)
	assert.Equal(t, "ready", service[0].DocumentID)
	assert.Equal(t, 1, service[0].TableNumber)
}

func TestFloor_FailedRefreshKeepsWriteAndReloadsLater(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(burger).addTable(1, newOrder("o1", burger, 1))
	floor := newFloor(b, nil)
	ctx := context.Background()

	_, err := floor.Snapshot(ctx)
	require.NoError(t, err)

	b.mu.Lock()
	b.failList = errBackendDown
	b.mu.Unlock()

	require.NoError(t, floor.TogglePaid(ctx, "o1"))

	_, err = floor.Snapshot(ctx)
	require.ErrorIs(t, err, errBackendDown)

	b.mu.Lock()
	b.failList = nil
	b.mu.Unlock()

	table, err := floor.Table(ctx, 1)
	require.NoError(t, err)
	assert.True(t, table.Orders[0].Paid)
}

func TestFloor_PublishFailureDoesNotFailWrite(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(burger).addTable(1)
	floor := newFloor(b, &recordingPublisher{err: errBackendDown})

	_, err := floor.AddProduct(context.Background(), 1, burger.ID)
	assert.NoError(t, err)
}
