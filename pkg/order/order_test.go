package order

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"farmxchain/domain"
	"farmxchain/entities"
	"farmxchain/pkg/inventory"
	"farmxchain/pkg/slot"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pending(id string, items ...domain.OrderItem) domain.Order {
	return domain.Order{
		ID:     id,
		Items:  items,
		Total:  domain.OrderTotal(items),
		Date:   "2025-09-01",
		Status: domain.StatusPending,
	}
}

func ids(orders []domain.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func newLedger(t *testing.T, repo EventRepository, opts ...LedgerOption) *Ledger {
	t.Helper()
	l, err := NewLedger(context.Background(), repo, opts...)
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l
}

// Both implementations of Log must agree on the basic contract.
func TestLog_Contract(t *testing.T) {
	impls := map[string]func(t *testing.T) Log{
		"slot": func(t *testing.T) Log {
			s := slot.NewStore(slot.NewMemorySlotRepository())
			t.Cleanup(s.Close)
			return NewSlotLog(s, "service")
		},
		"ledger": func(t *testing.T) Log {
			return newLedger(t, NewMemoryEventRepository())
		},
	}

	for name, build := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			l := build(t)

			empty, err := l.List(ctx, domain.LogRetailerOrders)
			require.NoError(t, err)
			assert.Empty(t, empty)

			require.NoError(t, l.Append(ctx, domain.LogRetailerOrders, pending("1")))
			require.NoError(t, l.Append(ctx, domain.LogRetailerOrders, pending("2")))

			first, err := l.List(ctx, domain.LogRetailerOrders)
			require.NoError(t, err)
			second, err := l.List(ctx, domain.LogRetailerOrders)
			require.NoError(t, err)
			assert.Equal(t, []string{"2", "1"}, ids(first))
			assert.Equal(t, first, second)

			err = l.Append(ctx, domain.LogRetailerOrders, pending("1"))
			assert.ErrorIs(t, err, domain.ErrDuplicateOrder)

			_, err = l.List(ctx, "wishlist")
			assert.ErrorIs(t, err, domain.ErrUnknownLog)

			_, err = l.UpdateStatus(ctx, domain.LogRetailerOrders, "missing", domain.StatusProcessing)
			assert.ErrorIs(t, err, domain.ErrOrderNotFound)

			_, err = l.UpdateStatus(ctx, domain.LogRetailerOrders, "1", domain.StatusShipped)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.ErrorIs(t, err, domain.ErrValidation)

			for _, st := range []domain.OrderStatus{domain.StatusProcessing, domain.StatusShipped, domain.StatusDelivered} {
				o, err := l.UpdateStatus(ctx, domain.LogRetailerOrders, "1", st)
				require.NoError(t, err)
				assert.Equal(t, st, o.Status)
			}

			_, err = l.UpdateStatus(ctx, domain.LogRetailerOrders, "1", domain.StatusPending)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)

			after, err := l.List(ctx, domain.LogRetailerOrders)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusDelivered, after[1].Status)
			assert.Equal(t, domain.StatusPending, after[0].Status)
		})
	}
}

func TestCustomerLogTransitions(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, NewMemoryEventRepository())

	require.NoError(t, l.Append(ctx, domain.LogCustomerOrders, pending("ORD-1")))

	_, err := l.UpdateStatus(ctx, domain.LogCustomerOrders, "ORD-1", domain.StatusShipped)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = l.UpdateStatus(ctx, domain.LogCustomerOrders, "ORD-1", domain.StatusReadyForPickup)
	require.NoError(t, err)
	o, err := l.UpdateStatus(ctx, domain.LogCustomerOrders, "ORD-1", domain.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, o.Status)
}

// Customer orders written as Processing by older dashboards can still be delivered.
func TestCustomerLogProcessingToDelivered(t *testing.T) {
	ctx := context.Background()
	store := slot.NewStore(slot.NewMemorySlotRepository())
	defer store.Close()
	l := NewSlotLog(store, "retailer-view")

	legacy := pending("ORD-9")
	legacy.Status = domain.StatusProcessing
	require.NoError(t, l.Append(ctx, domain.LogCustomerOrders, legacy))

	_, err := l.UpdateStatus(ctx, domain.LogCustomerOrders, "ORD-9", domain.StatusReadyForPickup)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	o, err := l.UpdateStatus(ctx, domain.LogCustomerOrders, "ORD-9", domain.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, o.Status)
}

func TestView_StaleCacheLosesConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	store := slot.NewStore(slot.NewMemorySlotRepository())
	defer store.Close()

	customer, err := Mount(ctx, store, domain.LogCustomerOrders, "customer-dashboard")
	require.NoError(t, err)
	defer customer.Unmount()
	retailer, err := Mount(ctx, store, domain.LogCustomerOrders, "retailer-dashboard")
	require.NoError(t, err)
	defer retailer.Unmount()

	require.NoError(t, customer.Append(ctx, pending("ORD-1")))
	// The retailer has a pending notification but has not reloaded yet.
	require.NoError(t, retailer.Append(ctx, pending("ORD-2")))

	var stored []domain.Order
	require.NoError(t, slot.ReadJSON(ctx, store, domain.LogCustomerOrders, &stored))
	assert.Equal(t, []string{"ORD-2"}, ids(stored), "ORD-1 was overwritten by the stale view")

	// The customer view reloads on the retailer's write and sees the loss too.
	require.NoError(t, customer.Sync(ctx))
	assert.Equal(t, []string{"ORD-2"}, ids(customer.Orders()))
}

func TestView_SyncBeforeWriteKeepsBothAppends(t *testing.T) {
	ctx := context.Background()
	store := slot.NewStore(slot.NewMemorySlotRepository())
	defer store.Close()

	a, err := Mount(ctx, store, domain.LogRetailerOrders, "a")
	require.NoError(t, err)
	defer a.Unmount()
	b, err := Mount(ctx, store, domain.LogRetailerOrders, "b")
	require.NoError(t, err)
	defer b.Unmount()

	require.NoError(t, a.Append(ctx, pending("100")))
	require.NoError(t, b.Sync(ctx))
	require.NoError(t, b.Append(ctx, pending("200")))

	var stored []domain.Order
	require.NoError(t, slot.ReadJSON(ctx, store, domain.LogRetailerOrders, &stored))
	assert.Equal(t, []string{"200", "100"}, ids(stored))
}

func TestView_RunReloadsOnExternalWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := slot.NewStore(slot.NewMemorySlotRepository())
	defer store.Close()

	v, err := Mount(ctx, store, domain.LogRetailerOrders, "distributor-dashboard")
	require.NoError(t, err)
	defer v.Unmount()
	go v.Run(ctx)

	writer := NewSlotLog(store, "retailer-dashboard")
	require.NoError(t, writer.Append(ctx, domain.LogRetailerOrders, pending("1")))

	require.Eventually(t, func() bool { return len(v.Orders()) == 1 }, time.Second, 10*time.Millisecond)

	updated, err := v.UpdateStatus(ctx, "1", domain.StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, updated.Status)

	got, err := writer.List(ctx, domain.LogRetailerOrders)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, got[0].Status)
}

func TestLedger_SubscribersSeeEventsInOrder(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, NewMemoryEventRepository())

	events, err := l.Subscribe("audit")
	require.NoError(t, err)
	_, err = l.Subscribe("audit")
	assert.ErrorIs(t, err, ErrSubscriberExists)

	require.NoError(t, l.Append(ctx, domain.LogRetailerOrders, pending("1")))
	_, err = l.UpdateStatus(ctx, domain.LogRetailerOrders, "1", domain.StatusProcessing)
	require.NoError(t, err)
	// Rejected commands produce no event.
	_, err = l.UpdateStatus(ctx, domain.LogRetailerOrders, "1", domain.StatusFulfilled)
	require.Error(t, err)
	_, err = l.UpdateStatus(ctx, domain.LogRetailerOrders, "1", domain.StatusShipped)
	require.NoError(t, err)

	var got []Event
	for i := 0; i < 3; i++ {
		select {
		case e := <-events:
			got = append(got, e)
		case <-time.After(time.Second):
			t.Fatalf("only %d events received", len(got))
		}
	}
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, EventPlaced, got[0].Kind)
	require.NotNil(t, got[0].Order)
	assert.Equal(t, int64(2), got[1].Seq)
	assert.Equal(t, domain.StatusPending, got[1].From)
	assert.Equal(t, domain.StatusProcessing, got[1].To)
	assert.Equal(t, int64(3), got[2].Seq)
	assert.Equal(t, domain.StatusShipped, got[2].To)
	assert.Len(t, events, 0)

	require.NoError(t, l.Unsubscribe("audit"))
	assert.ErrorIs(t, l.Unsubscribe("audit"), ErrSubscriberNotFound)
}

func TestLedger_ReplayRebuildsProjection(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()

	first, err := NewLedger(ctx, repo)
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, domain.LogRetailerOrders, pending("1")))
	require.NoError(t, first.Append(ctx, domain.LogCustomerOrders, pending("ORD-7")))
	_, err = first.UpdateStatus(ctx, domain.LogRetailerOrders, "1", domain.StatusProcessing)
	require.NoError(t, err)
	first.Close()

	_, err = first.List(ctx, domain.LogRetailerOrders)
	assert.ErrorIs(t, err, domain.ErrLedgerClosed)
	_, err = first.Subscribe("late")
	assert.ErrorIs(t, err, domain.ErrLedgerClosed)

	store := slot.NewStore(slot.NewMemorySlotRepository())
	defer store.Close()
	second := newLedger(t, repo, WithProjection(store))

	retailer, err := second.List(ctx, domain.LogRetailerOrders)
	require.NoError(t, err)
	require.Len(t, retailer, 1)
	assert.Equal(t, domain.StatusProcessing, retailer[0].Status)

	// The projection is written on start so slot readers see replayed state.
	var projected []domain.Order
	require.NoError(t, slot.ReadJSON(ctx, store, domain.LogCustomerOrders, &projected))
	assert.Equal(t, []string{"ORD-7"}, ids(projected))

	// New events continue the sequence.
	events, err := second.Subscribe("s")
	require.NoError(t, err)
	require.NoError(t, second.Append(ctx, domain.LogRetailerOrders, pending("2")))
	e := <-events
	assert.Equal(t, int64(4), e.Seq)
}

type failingEventRepository struct{ EventRepository }

func (failingEventRepository) AppendEvent(context.Context, *entities.OrderEvent) error {
	return errors.New("disk full")
}

func TestLedger_FailedPersistLeavesProjectionUnchanged(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, failingEventRepository{NewMemoryEventRepository()})

	err := l.Append(ctx, domain.LogRetailerOrders, pending("1"))
	require.Error(t, err)

	orders, err := l.List(ctx, domain.LogRetailerOrders)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestLedger_RejectsNonPendingAppend(t *testing.T) {
	l := newLedger(t, NewMemoryEventRepository())
	o := pending("1")
	o.Status = domain.StatusShipped

	err := l.Append(context.Background(), domain.LogRetailerOrders, o)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func fixedClock() time.Time {
	return time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
}

func TestOrderService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(newLedger(t, NewMemoryEventRepository()), nil, validator.New(),
		WithServiceClock(fixedClock))

	order, err := svc.PlaceOrder(ctx, "Customer", domain.PlaceOrderRequest{
		Items: []domain.OrderItem{
			{Name: "Organic Tomatoes", Quantity: 2, UnitPrice: 25},
			{Name: "Carrots", Quantity: 1, UnitPrice: 30},
		},
		PlacedBy: "buyer@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 80.0, order.Total)
	assert.Equal(t, domain.RoleCustomer, order.OriginRole)
	assert.Equal(t, domain.RoleRetailer, order.DestinationRole)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, "2025-09-01", order.Date)
	assert.Regexp(t, `^ORD-\d{1,4}$`, order.ID)

	retail, err := svc.PlaceOrder(ctx, domain.RoleRetailer, domain.PlaceOrderRequest{
		Items: []domain.OrderItem{{Name: "Banana", Quantity: 10, UnitPrice: 1.8}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^\d+$`, retail.ID)

	listed, err := svc.ListOrders(ctx, domain.LogCustomerOrders)
	require.NoError(t, err)
	assert.Equal(t, []string{order.ID}, ids(listed))

	got, err := svc.GetOrder(ctx, domain.LogRetailerOrders, retail.ID)
	require.NoError(t, err)
	assert.Equal(t, 18.0, got.Total)
}

func TestOrderService_PlaceOrderRejections(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(newLedger(t, NewMemoryEventRepository()), nil, validator.New())

	_, err := svc.PlaceOrder(ctx, domain.RoleCustomer, domain.PlaceOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.PlaceOrder(ctx, domain.RoleCustomer, domain.PlaceOrderRequest{
		Items: []domain.OrderItem{{Name: "Carrots", Quantity: 0, UnitPrice: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)

	_, err = svc.PlaceOrder(ctx, domain.RoleFarmer, domain.PlaceOrderRequest{
		Items: []domain.OrderItem{{Name: "Carrots", Quantity: 1, UnitPrice: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownRolePair)
}

func TestOrderService_RetriesOnIDCollision(t *testing.T) {
	ctx := context.Background()
	issued := []string{"ORD-5", "ORD-5", "ORD-6"}
	gen := func(string) string {
		id := issued[0]
		issued = issued[1:]
		return id
	}
	svc := NewOrderService(newLedger(t, NewMemoryEventRepository()), nil, validator.New(), WithIDGenerator(gen))
	req := domain.PlaceOrderRequest{Items: []domain.OrderItem{{Name: "Carrots", Quantity: 1, UnitPrice: 1}}}

	a, err := svc.PlaceOrder(ctx, domain.RoleCustomer, req)
	require.NoError(t, err)
	b, err := svc.PlaceOrder(ctx, domain.RoleCustomer, req)
	require.NoError(t, err)
	assert.Equal(t, "ORD-5", a.ID)
	assert.Equal(t, "ORD-6", b.ID)
}

func TestOrderService_FulfilledDecrementsInventory(t *testing.T) {
	ctx := context.Background()
	invRepo := inventory.NewMemoryInventoryRepository()
	require.NoError(t, invRepo.SeedItems(ctx, []*entities.InventoryItem{
		{ID: uuid.New(), Product: "Organic Wheat", QuantityOnHand: 40, Unit: "kg"},
	}))
	svc := NewOrderService(newLedger(t, NewMemoryEventRepository()), inventory.NewInventoryService(invRepo), validator.New(),
		WithIDGenerator(func(string) string { return "ORD-1" }))

	order, err := svc.PlaceOrder(ctx, domain.RoleRetailer, domain.PlaceOrderRequest{
		Items: []domain.OrderItem{{Name: "Organic Wheat", Quantity: 2, UnitPrice: 25}},
	})
	require.NoError(t, err)
	require.Equal(t, "ORD-1", order.ID)

	for _, st := range []domain.OrderStatus{domain.StatusProcessing, domain.StatusShipped} {
		resp, err := svc.UpdateStatus(ctx, domain.LogRetailerOrders, "ORD-1", st)
		require.NoError(t, err)
		assert.Nil(t, resp.Fulfillment)
	}

	resp, err := svc.UpdateStatus(ctx, domain.LogRetailerOrders, "ORD-1", domain.StatusFulfilled)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, resp.Order.Status)
	require.NotNil(t, resp.Fulfillment)
	assert.Equal(t, 38, resp.Fulfillment.Adjusted[0].Remaining)

	item, err := invRepo.GetItemByProduct(ctx, "Organic Wheat")
	require.NoError(t, err)
	assert.Equal(t, 38, item.QuantityOnHand)

	_, err = svc.UpdateStatus(ctx, domain.LogRetailerOrders, "ORD-1", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

type slowInventoryRepository struct {
	inventory.InventoryRepository
	delay time.Duration
}

func (r slowInventoryRepository) DecrementItems(ctx context.Context, lines []domain.OrderItem) ([]domain.InventoryAdjustment, []string, error) {
	time.Sleep(r.delay)
	return r.InventoryRepository.DecrementItems(ctx, lines)
}

type brokenInventoryRepository struct {
	inventory.InventoryRepository
	down atomic.Bool
}

func (r *brokenInventoryRepository) DecrementItems(ctx context.Context, lines []domain.OrderItem) ([]domain.InventoryAdjustment, []string, error) {
	if r.down.Load() {
		return nil, nil, errors.New("db down")
	}
	return r.InventoryRepository.DecrementItems(ctx, lines)
}

type switchableEventRepository struct {
	EventRepository
	down atomic.Bool
}

func (r *switchableEventRepository) AppendEvent(ctx context.Context, e *entities.OrderEvent) error {
	if r.down.Load() {
		return errors.New("disk full")
	}
	return r.EventRepository.AppendEvent(ctx, e)
}

func seedWheat(t *testing.T, repo inventory.InventoryRepository, qty int) {
	t.Helper()
	require.NoError(t, repo.SeedItems(context.Background(), []*entities.InventoryItem{
		{ID: uuid.New(), Product: "Organic Wheat", QuantityOnHand: qty, Unit: "kg"},
	}))
}

func placeShipped(t *testing.T, svc OrderService, qty int) domain.Order {
	t.Helper()
	ctx := context.Background()
	o, err := svc.PlaceOrder(ctx, domain.RoleRetailer, domain.PlaceOrderRequest{
		Items: []domain.OrderItem{{Name: "Organic Wheat", Quantity: qty, UnitPrice: 25}},
	})
	require.NoError(t, err)
	for _, st := range []domain.OrderStatus{domain.StatusProcessing, domain.StatusShipped} {
		_, err := svc.UpdateStatus(ctx, domain.LogRetailerOrders, o.ID, st)
		require.NoError(t, err)
	}
	return o
}

func sequentialIDs() ServiceOption {
	var n atomic.Int64
	return WithIDGenerator(func(string) string { return strconv.FormatInt(n.Add(1), 10) })
}

func TestOrderService_ConcurrentFulfilmentsAllDecrement(t *testing.T) {
	ctx := context.Background()
	mem := inventory.NewMemoryInventoryRepository()
	seedWheat(t, mem, 100)
	repo := slowInventoryRepository{InventoryRepository: mem, delay: 2 * time.Millisecond}
	svc := NewOrderService(newLedger(t, NewMemoryEventRepository()), inventory.NewInventoryService(repo), validator.New(), sequentialIDs())

	var placed []domain.Order
	for range 10 {
		placed = append(placed, placeShipped(t, svc, 1))
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(placed))
	for _, o := range placed {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.UpdateStatus(ctx, domain.LogRetailerOrders, id, domain.StatusFulfilled)
			errs <- err
		}(o.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	item, err := mem.GetItemByProduct(ctx, "Organic Wheat")
	require.NoError(t, err)
	assert.Equal(t, 90, item.QuantityOnHand)
}

func TestOrderService_FailedInventoryLeavesOrderShipped(t *testing.T) {
	ctx := context.Background()
	repo := &brokenInventoryRepository{InventoryRepository: inventory.NewMemoryInventoryRepository()}
	seedWheat(t, repo, 40)
	svc := NewOrderService(newLedger(t, NewMemoryEventRepository()), inventory.NewInventoryService(repo), validator.New(), sequentialIDs())
	o := placeShipped(t, svc, 2)

	repo.down.Store(true)
	_, err := svc.UpdateStatus(ctx, domain.LogRetailerOrders, o.ID, domain.StatusFulfilled)
	require.Error(t, err)

	got, err := svc.GetOrder(ctx, domain.LogRetailerOrders, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, got.Status)
	item, err := repo.GetItemByProduct(ctx, "Organic Wheat")
	require.NoError(t, err)
	assert.Equal(t, 40, item.QuantityOnHand)

	repo.down.Store(false)
	resp, err := svc.UpdateStatus(ctx, domain.LogRetailerOrders, o.ID, domain.StatusFulfilled)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, resp.Order.Status)
	assert.Equal(t, 38, resp.Fulfillment.Adjusted[0].Remaining)
}

func TestOrderService_RejectedFulfilmentRestocks(t *testing.T) {
	ctx := context.Background()
	events := &switchableEventRepository{EventRepository: NewMemoryEventRepository()}
	mem := inventory.NewMemoryInventoryRepository()
	seedWheat(t, mem, 40)
	svc := NewOrderService(newLedger(t, events), inventory.NewInventoryService(mem), validator.New(), sequentialIDs())
	o := placeShipped(t, svc, 2)

	events.down.Store(true)
	_, err := svc.UpdateStatus(ctx, domain.LogRetailerOrders, o.ID, domain.StatusFulfilled)
	require.Error(t, err)

	got, err := svc.GetOrder(ctx, domain.LogRetailerOrders, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, got.Status)
	item, err := mem.GetItemByProduct(ctx, "Organic Wheat")
	require.NoError(t, err)
	assert.Equal(t, 40, item.QuantityOnHand)
}

func TestOrderService_FulfilFromWrongStatusTouchesNoStock(t *testing.T) {
	ctx := context.Background()
	mem := inventory.NewMemoryInventoryRepository()
	seedWheat(t, mem, 40)
	svc := NewOrderService(newLedger(t, NewMemoryEventRepository()), inventory.NewInventoryService(mem), validator.New(), sequentialIDs())

	o, err := svc.PlaceOrder(ctx, domain.RoleRetailer, domain.PlaceOrderRequest{
		Items: []domain.OrderItem{{Name: "Organic Wheat", Quantity: 2, UnitPrice: 25}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, domain.LogRetailerOrders, o.ID, domain.StatusFulfilled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	item, err := mem.GetItemByProduct(ctx, "Organic Wheat")
	require.NoError(t, err)
	assert.Equal(t, 40, item.QuantityOnHand)
}

func TestTimeIDGenerator(t *testing.T) {
	now := time.UnixMilli(1_700_000_012_345)
	gen := NewTimeIDGenerator(func() time.Time { return now })

	assert.Equal(t, "ORD-2345", gen(domain.LogCustomerOrders))
	assert.Equal(t, "ORD-2346", gen(domain.LogCustomerOrders))
	assert.Equal(t, "1700000012347", gen(domain.LogRetailerOrders))
}
