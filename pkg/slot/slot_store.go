package slot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"farmxchain/entities"
	"farmxchain/internal/metrics"
)

// WatchBuffer is how many unread notifications a watcher may hold before new
// ones are dropped.
const WatchBuffer = 16

var (
	ErrWatcherExists   = errors.New("watcher already registered for slot")
	ErrWatcherNotFound = errors.New("watcher not found")
	ErrStoreClosed     = errors.New("slot store closed")
)

type (
	// Change tells a watcher that another writer replaced a slot.
	Change struct {
		Slot   string
		Writer string
		At     time.Time
	}

	// Store is shared, unversioned, last-write-wins storage of named JSON slots.
	Store interface {
		Get(ctx context.Context, name string) ([]byte, error)
		Set(ctx context.Context, name string, value []byte, writer string) error
		Remove(ctx context.Context, name string, writer string) error
		Watch(name, viewerID string) (*Subscription, error)
		Close()
	}

	Subscription struct {
		C      <-chan Change
		cancel func()
		once   sync.Once
	}

	watcher struct {
		viewerID string
		ch       chan Change
	}

	store struct {
		repo SlotRepository

		mu       sync.RWMutex
		watchers map[string]map[string]*watcher
		closed   bool
	}
)

func NewStore(repo SlotRepository) Store {
	return &store{
		repo:     repo,
		watchers: make(map[string]map[string]*watcher),
	}
}

// Get returns the raw slot value, or nil when the slot was never written.
func (s *store) Get(ctx context.Context, name string) ([]byte, error) {
	slot, err := s.repo.GetSlot(ctx, name)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(slot.Value), nil
}

// Set replaces the whole slot and notifies every watcher except the writer.
func (s *store) Set(ctx context.Context, name string, value []byte, writer string) error {
	if s.isClosed() {
		return ErrStoreClosed
	}
	now := time.Now()
	if err := s.repo.SaveSlot(ctx, &entities.StorageSlot{
		Name:      name,
		Value:     string(value),
		UpdatedBy: writer,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("write slot %s: %w", name, err)
	}
	s.notify(Change{Slot: name, Writer: writer, At: now})
	return nil
}

func (s *store) Remove(ctx context.Context, name string, writer string) error {
	if s.isClosed() {
		return ErrStoreClosed
	}
	if err := s.repo.DeleteSlot(ctx, name); err != nil {
		return fmt.Errorf("remove slot %s: %w", name, err)
	}
	s.notify(Change{Slot: name, Writer: writer, At: time.Now()})
	return nil
}

// Watch registers viewerID for changes to one slot. Writes made by viewerID
// itself are not reported back to it.
func (s *store) Watch(name, viewerID string) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	viewers, ok := s.watchers[name]
	if !ok {
		viewers = make(map[string]*watcher)
		s.watchers[name] = viewers
	}
	if _, exists := viewers[viewerID]; exists {
		return nil, ErrWatcherExists
	}

	w := &watcher{viewerID: viewerID, ch: make(chan Change, WatchBuffer)}
	viewers[viewerID] = w

	return &Subscription{
		C:      w.ch,
		cancel: func() { s.unwatch(name, viewerID) },
	}, nil
}

// Close stops the subscription and closes its channel.
func (sub *Subscription) Close() {
	sub.once.Do(sub.cancel)
}

func (s *store) unwatch(name, viewerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	viewers, ok := s.watchers[name]
	if !ok {
		return
	}
	if w, ok := viewers[viewerID]; ok {
		close(w.ch)
		delete(viewers, viewerID)
	}
	if len(viewers) == 0 {
		delete(s.watchers, name)
	}
}

func (s *store) notify(change Change) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, w := range s.watchers[change.Slot] {
		if id == change.Writer {
			continue
		}
		select {
		case w.ch <- change:
		default:
			metrics.SlotNotificationsDroppedTotal.Inc()
		}
	}
}

func (s *store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close closes every watcher channel. Later writes fail with ErrStoreClosed.
func (s *store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, viewers := range s.watchers {
		for _, w := range viewers {
			close(w.ch)
		}
	}
	s.watchers = nil
}

// ReadJSON decodes a slot into v. A missing slot leaves v untouched.
func ReadJSON(ctx context.Context, s Store, name string, v any) error {
	raw, err := s.Get(ctx, name)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode slot %s: %w", name, err)
	}
	return nil
}

func WriteJSON(ctx context.Context, s Store, name string, v any, writer string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", name, err)
	}
	return s.Set(ctx, name, raw, writer)
}
