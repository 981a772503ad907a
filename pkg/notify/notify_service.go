package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"farmxchain/domain"
	"farmxchain/internal/utils/mailing"
	"farmxchain/pkg/order"

	"github.com/gofiber/fiber/v2/log"
)

// NotifyService emails the buyer when one of their orders is finished.
type (
	NotifyService interface {
		Run(ctx context.Context, events <-chan order.Event)
		Handle(e order.Event) error
	}

	notifyService struct {
		sender mailing.Sender
		appURL string
	}
)

func NewNotifyService(sender mailing.Sender, appURL string) NotifyService {
	return &notifyService{sender: sender, appURL: appURL}
}

// Run handles events until the channel closes or ctx is done.
func (s *notifyService) Run(ctx context.Context, events <-chan order.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := s.Handle(e); err != nil {
				log.Errorf("notify order %s: %v", e.OrderID, err)
			}
		}
	}
}

func (s *notifyService) Handle(e order.Event) error {
	if e.Kind != order.EventStatusChanged || !domain.IsTerminal(e.To) {
		return nil
	}
	if e.Order == nil || e.Order.PlacedBy == "" {
		return nil
	}

	subject := fmt.Sprintf("Order %s %s", e.OrderID, strings.ToLower(string(e.To)))
	if err := s.sender.SendMail(e.Order.PlacedBy, subject, s.body(e)); err != nil {
		return err
	}
	log.Infof("sent %s notice for order %s to %s", e.To, e.OrderID, e.Order.PlacedBy)
	return nil
}

func (s *notifyService) body(e order.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Your order <b>%s</b> is now <b>%s</b>.</p><ul>",
		html.EscapeString(e.OrderID), html.EscapeString(string(e.To)))
	for _, item := range e.Order.Items {
		fmt.Fprintf(&b, "<li>%s &times; %d</li>", html.EscapeString(item.Name), item.Quantity)
	}
	fmt.Fprintf(&b, "</ul><p>Total: %.2f</p>", e.Order.Total)
	if s.appURL != "" {
		fmt.Fprintf(&b, `<p><a href="%s">Open FarmXChain</a></p>`, html.EscapeString(s.appURL))
	}
	return b.String()
}
