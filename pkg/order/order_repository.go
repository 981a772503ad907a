package order

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"farmxchain/domain"
	"farmxchain/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventKind string

const (
	EventPlaced        EventKind = "placed"
	EventStatusChanged EventKind = "status_changed"
)

// Event is one fact in the order ledger. Order is the order as it stands
// after the event.
type Event struct {
	Seq     int64              `json:"seq"`
	Log     string             `json:"log"`
	Kind    EventKind          `json:"kind"`
	OrderID string             `json:"order_id"`
	Order   *domain.Order      `json:"order,omitempty"`
	From    domain.OrderStatus `json:"from,omitempty"`
	To      domain.OrderStatus `json:"to"`
	At      time.Time          `json:"at"`
}

type (
	EventRepository interface {
		AppendEvent(ctx context.Context, event *entities.OrderEvent) error
		GetEvents(ctx context.Context) ([]*entities.OrderEvent, error)
	}

	eventRepository struct {
		db *gorm.DB
	}

	memoryEventRepository struct {
		mu     sync.RWMutex
		events []entities.OrderEvent
	}
)

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) AppendEvent(ctx context.Context, event *entities.OrderEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) GetEvents(ctx context.Context) ([]*entities.OrderEvent, error) {
	var events []*entities.OrderEvent
	if err := r.db.WithContext(ctx).Order("seq asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func NewMemoryEventRepository() EventRepository {
	return &memoryEventRepository{}
}

func (r *memoryEventRepository) AppendEvent(_ context.Context, event *entities.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.events {
		if e.Seq == event.Seq {
			return fmt.Errorf("event seq %d already stored", event.Seq)
		}
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *memoryEventRepository) GetEvents(_ context.Context) ([]*entities.OrderEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*entities.OrderEvent, 0, len(r.events))
	for i := range r.events {
		e := r.events[i]
		events = append(events, &e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Seq < events[j].Seq })
	return events, nil
}

func eventToEntity(e Event) (*entities.OrderEvent, error) {
	row := &entities.OrderEvent{
		ID:         uuid.New(),
		Seq:        e.Seq,
		Log:        e.Log,
		Kind:       string(e.Kind),
		OrderID:    e.OrderID,
		FromStatus: string(e.From),
		ToStatus:   string(e.To),
		OccurredAt: e.At,
	}
	if e.Order != nil {
		payload, err := json.Marshal(e.Order)
		if err != nil {
			return nil, err
		}
		row.Payload = string(payload)
	}
	return row, nil
}

func eventFromEntity(row *entities.OrderEvent) (Event, error) {
	e := Event{
		Seq:     row.Seq,
		Log:     row.Log,
		Kind:    EventKind(row.Kind),
		OrderID: row.OrderID,
		From:    domain.OrderStatus(row.FromStatus),
		To:      domain.OrderStatus(row.ToStatus),
		At:      row.OccurredAt,
	}
	if row.Payload != "" {
		var o domain.Order
		if err := json.Unmarshal([]byte(row.Payload), &o); err != nil {
			return Event{}, fmt.Errorf("decode event %d: %w", row.Seq, err)
		}
		e.Order = &o
	}
	if e.Kind == EventPlaced && e.Order == nil {
		return Event{}, fmt.Errorf("placed event %d has no order payload", row.Seq)
	}
	return e, nil
}
