package notify

import (
	"context"
	"testing"
	"time"

	"farmxchain/domain"
	"farmxchain/pkg/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct{ to, subject, body string }

type recordingSender struct{ sent chan sentMail }

func (r *recordingSender) SendMail(to, subject, body string) error {
	r.sent <- sentMail{to, subject, body}
	return nil
}

func TestHandle_OnlyTerminalTransitionsWithBuyer(t *testing.T) {
	sender := &recordingSender{sent: make(chan sentMail, 4)}
	svc := NewNotifyService(sender, "https://farmxchain.test")

	o := &domain.Order{ID: "ORD-3", Items: []domain.OrderItem{{Name: "Carrots", Quantity: 2}}, Total: 3.6, PlacedBy: "c@example.com"}

	require.NoError(t, svc.Handle(order.Event{Kind: order.EventPlaced, OrderID: "ORD-3", Order: o, To: domain.StatusPending}))
	require.NoError(t, svc.Handle(order.Event{Kind: order.EventStatusChanged, OrderID: "ORD-3", Order: o, To: domain.StatusReadyForPickup}))
	anonymous := *o
	anonymous.PlacedBy = ""
	require.NoError(t, svc.Handle(order.Event{Kind: order.EventStatusChanged, OrderID: "ORD-3", Order: &anonymous, To: domain.StatusDelivered}))
	assert.Len(t, sender.sent, 0)

	require.NoError(t, svc.Handle(order.Event{Kind: order.EventStatusChanged, OrderID: "ORD-3", Order: o, To: domain.StatusDelivered}))
	mail := <-sender.sent
	assert.Equal(t, "c@example.com", mail.to)
	assert.Equal(t, "Order ORD-3 delivered", mail.subject)
	assert.Contains(t, mail.body, "Carrots &times; 2")
	assert.Contains(t, mail.body, "Total: 3.60")
}

func TestRun_ConsumesLedgerEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ledger, err := order.NewLedger(ctx, order.NewMemoryEventRepository())
	require.NoError(t, err)
	defer ledger.Close()
	events, err := ledger.Subscribe("notify")
	require.NoError(t, err)

	sender := &recordingSender{sent: make(chan sentMail, 1)}
	go NewNotifyService(sender, "").Run(ctx, events)

	o := domain.Order{ID: "ORD-9", Status: domain.StatusPending, PlacedBy: "c@example.com"}
	require.NoError(t, ledger.Append(ctx, domain.LogCustomerOrders, o))
	for _, st := range []domain.OrderStatus{domain.StatusReadyForPickup, domain.StatusDelivered} {
		_, err := ledger.UpdateStatus(ctx, domain.LogCustomerOrders, "ORD-9", st)
		require.NoError(t, err)
	}

	select {
	case mail := <-sender.sent:
		assert.Equal(t, "Order ORD-9 delivered", mail.subject)
	case <-time.After(time.Second):
		t.Fatal("no mail sent")
	}
}
