package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"farmxchain/domain"
	"farmxchain/internal/metrics"
	"farmxchain/pkg/slot"

	"github.com/gofiber/fiber/v2/log"
)

// SubscriberBuffer is how many undelivered events a subscriber may hold
// before further events are dropped for it.
const SubscriberBuffer = 64

// LedgerWriter is the writer name the ledger uses when projecting into slots.
const LedgerWriter = "ledger"

var (
	ErrSubscriberExists   = errors.New("subscriber already registered")
	ErrSubscriberNotFound = errors.New("subscriber not found")
)

type commandKind int

const (
	cmdAppend commandKind = iota
	cmdUpdate
	cmdList
)

type (
	command struct {
		ctx    context.Context
		kind   commandKind
		log    string
		order  domain.Order
		id     string
		status domain.OrderStatus
		reply  chan result
	}

	result struct {
		orders []domain.Order
		order  domain.Order
		err    error
	}

	// Ledger is an event-sourced Log. A single goroutine owns the projection
	// and is the only writer of events; callers talk to it over a channel.
	Ledger struct {
		repo  EventRepository
		store slot.Store
		clock func() time.Time

		cmds chan command
		quit chan struct{}
		done chan struct{}
		once sync.Once

		// owned by the run goroutine
		seq  int64
		logs map[string][]domain.Order

		subMu  sync.RWMutex
		subs   map[string]chan Event
		closed bool
	}

	LedgerOption func(*Ledger)
)

// WithProjection mirrors every log into store after each event.
func WithProjection(store slot.Store) LedgerOption {
	return func(l *Ledger) { l.store = store }
}

func WithClock(clock func() time.Time) LedgerOption {
	return func(l *Ledger) { l.clock = clock }
}

// NewLedger replays every stored event and starts the owner goroutine.
func NewLedger(ctx context.Context, repo EventRepository, opts ...LedgerOption) (*Ledger, error) {
	l := &Ledger{
		repo:  repo,
		clock: time.Now,
		cmds:  make(chan command),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
		logs:  make(map[string][]domain.Order),
		subs:  make(map[string]chan Event),
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.replay(ctx); err != nil {
		return nil, err
	}
	for _, name := range []string{domain.LogCustomerOrders, domain.LogRetailerOrders} {
		l.project(ctx, name)
	}

	go l.run()
	return l, nil
}

func (l *Ledger) replay(ctx context.Context) error {
	rows, err := l.repo.GetEvents(ctx)
	if err != nil {
		return fmt.Errorf("load order events: %w", err)
	}
	for _, row := range rows {
		e, err := eventFromEntity(row)
		if err != nil {
			return err
		}
		if err := l.apply(e); err != nil {
			return fmt.Errorf("replay event %d: %w", e.Seq, err)
		}
		l.seq = e.Seq
	}
	if len(rows) > 0 {
		log.Infof("order ledger replayed %d events up to seq %d", len(rows), l.seq)
	}
	return nil
}

func (l *Ledger) Append(ctx context.Context, logName string, order domain.Order) error {
	_, err := l.send(ctx, command{kind: cmdAppend, log: logName, order: order})
	return err
}

func (l *Ledger) List(ctx context.Context, logName string) ([]domain.Order, error) {
	res, err := l.send(ctx, command{kind: cmdList, log: logName})
	return res.orders, err
}

func (l *Ledger) UpdateStatus(ctx context.Context, logName, id string, status domain.OrderStatus) (domain.Order, error) {
	res, err := l.send(ctx, command{kind: cmdUpdate, log: logName, id: id, status: status})
	return res.order, err
}

func (l *Ledger) send(ctx context.Context, cmd command) (result, error) {
	cmd.ctx = ctx
	cmd.reply = make(chan result, 1)

	select {
	case <-l.done:
		return result{}, domain.ErrLedgerClosed
	case <-ctx.Done():
		return result{}, ctx.Err()
	case l.cmds <- cmd:
	}

	select {
	case res := <-cmd.reply:
		return res, res.err
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

func (l *Ledger) run() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case cmd := <-l.cmds:
			cmd.reply <- l.handle(cmd)
		}
	}
}

func (l *Ledger) handle(cmd command) result {
	if !domain.IsKnownLog(cmd.log) {
		return result{err: domain.ErrUnknownLog}
	}

	switch cmd.kind {
	case cmdList:
		return result{orders: cloneOrders(l.logs[cmd.log])}

	case cmdAppend:
		if cmd.order.Status != domain.StatusPending {
			return result{err: fmt.Errorf("%w: new orders start as %s", domain.ErrInvalidOrder, domain.StatusPending)}
		}
		if indexOf(l.logs[cmd.log], cmd.order.ID) >= 0 {
			return result{err: fmt.Errorf("%w: %s", domain.ErrDuplicateOrder, cmd.order.ID)}
		}
		o := cmd.order
		e := Event{Kind: EventPlaced, Log: cmd.log, OrderID: o.ID, Order: &o, To: o.Status}
		if err := l.commit(cmd.ctx, e); err != nil {
			return result{err: err}
		}
		return result{order: o}

	case cmdUpdate:
		orders := l.logs[cmd.log]
		i := indexOf(orders, cmd.id)
		if i < 0 {
			return result{err: fmt.Errorf("%w: %s", domain.ErrOrderNotFound, cmd.id)}
		}
		from := orders[i].Status
		if !domain.CanTransition(cmd.log, from, cmd.status) {
			return result{err: fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, cmd.status)}
		}
		after := orders[i]
		after.Status = cmd.status
		e := Event{Kind: EventStatusChanged, Log: cmd.log, OrderID: cmd.id, Order: &after, From: from, To: cmd.status}
		if err := l.commit(cmd.ctx, e); err != nil {
			return result{err: err}
		}
		return result{order: l.logs[cmd.log][i]}
	}

	return result{err: fmt.Errorf("unknown ledger command %d", cmd.kind)}
}

// commit persists e, then applies, projects and publishes it. Nothing changes
// in memory when persisting fails.
func (l *Ledger) commit(ctx context.Context, e Event) error {
	e.Seq = l.seq + 1
	e.At = l.clock()

	row, err := eventToEntity(e)
	if err != nil {
		return err
	}
	if err := l.repo.AppendEvent(ctx, row); err != nil {
		return fmt.Errorf("persist order event: %w", err)
	}
	if err := l.apply(e); err != nil {
		return err
	}
	l.seq = e.Seq

	l.project(ctx, e.Log)
	l.publish(e)
	return nil
}

func (l *Ledger) apply(e Event) error {
	switch e.Kind {
	case EventPlaced:
		orders, err := prepend(l.logs[e.Log], *e.Order)
		if err != nil {
			return err
		}
		l.logs[e.Log] = orders
	case EventStatusChanged:
		i := indexOf(l.logs[e.Log], e.OrderID)
		if i < 0 {
			return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, e.OrderID)
		}
		l.logs[e.Log][i].Status = e.To
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return nil
}

func (l *Ledger) project(ctx context.Context, logName string) {
	if l.store == nil {
		return
	}
	orders := l.logs[logName]
	if orders == nil {
		orders = []domain.Order{}
	}
	if err := slot.WriteJSON(ctx, l.store, logName, orders, LedgerWriter); err != nil {
		log.Warnf("project %s into slot: %v", logName, err)
	}
}

// Subscribe returns a channel that receives every committed event in sequence order.
func (l *Ledger) Subscribe(id string) (<-chan Event, error) {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	if l.closed {
		return nil, domain.ErrLedgerClosed
	}
	if _, ok := l.subs[id]; ok {
		return nil, ErrSubscriberExists
	}
	ch := make(chan Event, SubscriberBuffer)
	l.subs[id] = ch
	return ch, nil
}

func (l *Ledger) Unsubscribe(id string) error {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	ch, ok := l.subs[id]
	if !ok {
		return ErrSubscriberNotFound
	}
	close(ch)
	delete(l.subs, id)
	return nil
}

func (l *Ledger) publish(e Event) {
	l.subMu.RLock()
	defer l.subMu.RUnlock()

	for id, ch := range l.subs {
		select {
		case ch <- e:
		default:
			metrics.LedgerEventsDroppedTotal.Inc()
			log.Warnf("ledger subscriber %s is full, dropped event %d", id, e.Seq)
		}
	}
}

// Close stops the owner goroutine and closes every subscriber channel.
func (l *Ledger) Close() {
	l.once.Do(func() {
		close(l.quit)
		<-l.done

		l.subMu.Lock()
		defer l.subMu.Unlock()
		l.closed = true
		for id, ch := range l.subs {
			close(ch)
			delete(l.subs, id)
		}
	})
}
