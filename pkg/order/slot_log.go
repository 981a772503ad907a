package order

import (
	"context"
	"fmt"

	"farmxchain/domain"
	"farmxchain/pkg/slot"
)

// Log is a set of named, newest-first order sequences.
type Log interface {
	Append(ctx context.Context, log string, order domain.Order) error
	List(ctx context.Context, log string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, log, id string, status domain.OrderStatus) (domain.Order, error)
}

// SlotLog keeps every order log as one JSON array in a shared slot. Each
// mutation reads the slot, edits it and writes the whole array back, with no
// locking. Concurrent writers can lose each other's changes.
type SlotLog struct {
	store  slot.Store
	writer string
}

func NewSlotLog(store slot.Store, writer string) *SlotLog {
	return &SlotLog{store: store, writer: writer}
}

func (l *SlotLog) Append(ctx context.Context, log string, order domain.Order) error {
	orders, err := l.List(ctx, log)
	if err != nil {
		return err
	}
	orders, err = prepend(orders, order)
	if err != nil {
		return err
	}
	return slot.WriteJSON(ctx, l.store, log, orders, l.writer)
}

func (l *SlotLog) List(ctx context.Context, log string) ([]domain.Order, error) {
	if !domain.IsKnownLog(log) {
		return nil, domain.ErrUnknownLog
	}
	var orders []domain.Order
	if err := slot.ReadJSON(ctx, l.store, log, &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (l *SlotLog) UpdateStatus(ctx context.Context, log, id string, status domain.OrderStatus) (domain.Order, error) {
	orders, err := l.List(ctx, log)
	if err != nil {
		return domain.Order{}, err
	}
	updated, err := transition(orders, log, id, status)
	if err != nil {
		return domain.Order{}, err
	}
	if err := slot.WriteJSON(ctx, l.store, log, orders, l.writer); err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}

// prepend returns a new slice with order at the front.
func prepend(orders []domain.Order, order domain.Order) ([]domain.Order, error) {
	if indexOf(orders, order.ID) >= 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateOrder, order.ID)
	}
	out := make([]domain.Order, 0, len(orders)+1)
	out = append(out, order)
	return append(out, orders...), nil
}

// transition moves the order with id to status in place and returns the updated copy.
func transition(orders []domain.Order, log, id string, status domain.OrderStatus) (domain.Order, error) {
	i := indexOf(orders, id)
	if i < 0 {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	from := orders[i].Status
	if !domain.CanTransition(log, from, status) {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, status)
	}
	orders[i].Status = status
	return orders[i], nil
}

func indexOf(orders []domain.Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneOrders(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	return out
}
