package order

import (
	"context"
	"fmt"
	"sync"

	"farmxchain/domain"
	"farmxchain/pkg/slot"

	"github.com/gofiber/fiber/v2/log"
)

// View is one dashboard's cached copy of an order log. It writes its own
// cache back on every mutation, so a view that has not yet reloaded after
// someone else's write will overwrite that write.
type View struct {
	store    slot.Store
	log      string
	viewerID string
	sub      *slot.Subscription

	mu     sync.RWMutex
	orders []domain.Order
}

// Mount loads the log and starts watching it for external writes. Call Run
// to apply those writes automatically, or Sync to apply pending ones.
func Mount(ctx context.Context, store slot.Store, logName, viewerID string) (*View, error) {
	if !domain.IsKnownLog(logName) {
		return nil, domain.ErrUnknownLog
	}
	sub, err := store.Watch(logName, viewerID)
	if err != nil {
		return nil, err
	}
	v := &View{store: store, log: logName, viewerID: viewerID, sub: sub}
	if err := v.Reload(ctx); err != nil {
		sub.Close()
		return nil, err
	}
	return v, nil
}

func (v *View) Orders() []domain.Order {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneOrders(v.orders)
}

// Reload replaces the cache with the current slot contents.
func (v *View) Reload(ctx context.Context) error {
	var orders []domain.Order
	if err := slot.ReadJSON(ctx, v.store, v.log, &orders); err != nil {
		return err
	}
	v.mu.Lock()
	v.orders = orders
	v.mu.Unlock()
	return nil
}

// Sync applies every change notification already delivered to this view.
func (v *View) Sync(ctx context.Context) error {
	for {
		select {
		case _, ok := <-v.sub.C:
			if !ok {
				return nil
			}
			if err := v.Reload(ctx); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// Run reloads on every external write until ctx is done or the view is unmounted.
func (v *View) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-v.sub.C:
			if !ok {
				return
			}
			if err := v.Reload(ctx); err != nil {
				log.Errorf("view %s: reload %s after write by %s: %v", v.viewerID, v.log, change.Writer, err)
			}
		}
	}
}

// Append prepends order to the cached log and writes the cache back.
func (v *View) Append(ctx context.Context, order domain.Order) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	orders, err := prepend(v.orders, order)
	if err != nil {
		return err
	}
	if err := slot.WriteJSON(ctx, v.store, v.log, orders, v.viewerID); err != nil {
		return err
	}
	v.orders = orders
	return nil
}

// UpdateStatus changes one cached order and writes the cache back.
func (v *View) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	orders := cloneOrders(v.orders)
	updated, err := transition(orders, v.log, id, status)
	if err != nil {
		return domain.Order{}, err
	}
	if err := slot.WriteJSON(ctx, v.store, v.log, orders, v.viewerID); err != nil {
		return domain.Order{}, fmt.Errorf("write %s: %w", v.log, err)
	}
	v.orders = orders
	return updated, nil
}

func (v *View) Unmount() {
	v.sub.Close()
}
