package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"farmxchain/domain"
	"farmxchain/internal/metrics"
	"farmxchain/pkg/inventory"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
)

// placeAttempts bounds how often PlaceOrder retries after an id collision.
const placeAttempts = 3

type (
	OrderService interface {
		PlaceOrder(ctx context.Context, role string, req domain.PlaceOrderRequest) (domain.Order, error)
		ListOrders(ctx context.Context, log string) ([]domain.Order, error)
		GetOrder(ctx context.Context, log, id string) (domain.Order, error)
		UpdateStatus(ctx context.Context, log, id string, status domain.OrderStatus) (domain.UpdateOrderStatusResponse, error)
	}

	// IDGenerator returns a fresh order id for the given log.
	IDGenerator func(log string) string

	orderService struct {
		orders    Log
		inventory inventory.InventoryService
		validate  *validator.Validate
		clock     func() time.Time
		nextID    IDGenerator
	}

	ServiceOption func(*orderService)
)

func WithIDGenerator(gen IDGenerator) ServiceOption {
	return func(s *orderService) { s.nextID = gen }
}

func WithServiceClock(clock func() time.Time) ServiceOption {
	return func(s *orderService) { s.clock = clock }
}

func NewOrderService(orders Log, inventory inventory.InventoryService, validate *validator.Validate, opts ...ServiceOption) OrderService {
	s := &orderService{
		orders:    orders,
		inventory: inventory,
		validate:  validate,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.nextID == nil {
		s.nextID = NewTimeIDGenerator(s.clock)
	}
	return s
}

// NewTimeIDGenerator issues ids from the clock in milliseconds, strictly
// increasing within the process. Customer orders get ORD-<n> with n below
// 10000; retailer orders get the full millisecond value.
func NewTimeIDGenerator(clock func() time.Time) IDGenerator {
	var (
		mu   sync.Mutex
		last int64
	)
	return func(logName string) string {
		mu.Lock()
		n := max(clock().UnixMilli(), last+1)
		last = n
		mu.Unlock()

		if logName == domain.LogCustomerOrders {
			return fmt.Sprintf(domain.CustomerOrderIDFmt, n%10000)
		}
		return strconv.FormatInt(n, 10)
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, role string, req domain.PlaceOrderRequest) (domain.Order, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrInvalidOrder, err)
	}

	destination, err := domain.DestinationFor(role)
	if err != nil {
		return domain.Order{}, err
	}
	logName, err := domain.LogForRoles(role, destination)
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		OriginRole:      domain.NormalizeRole(role),
		DestinationRole: destination,
		Items:           req.Items,
		Total:           domain.OrderTotal(req.Items),
		Date:            s.clock().Format(domain.OrderDateLayout),
		Status:          domain.StatusPending,
		PlacedBy:        req.PlacedBy,
	}

	for attempt := 1; ; attempt++ {
		order.ID = s.nextID(logName)
		err = s.orders.Append(ctx, logName, order)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrDuplicateOrder) || attempt == placeAttempts {
			return domain.Order{}, err
		}
		log.Warnf("order id %s already taken in %s, retrying", order.ID, logName)
	}

	metrics.OrdersPlacedTotal.WithLabelValues(logName).Inc()
	log.Infof("order %s placed in %s by %s, total %.2f", order.ID, logName, order.OriginRole, order.Total)
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, logName string) ([]domain.Order, error) {
	return s.orders.List(ctx, logName)
}

func (s *orderService) GetOrder(ctx context.Context, logName, id string) (domain.Order, error) {
	orders, err := s.orders.List(ctx, logName)
	if err != nil {
		return domain.Order{}, err
	}
	if i := indexOf(orders, id); i >= 0 {
		return orders[i], nil
	}
	return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
}

func (s *orderService) UpdateStatus(ctx context.Context, logName, id string, status domain.OrderStatus) (domain.UpdateOrderStatusResponse, error) {
	if status == "" {
		return domain.UpdateOrderStatusResponse{}, domain.NewValidationError("status is required")
	}
	if logName == domain.LogRetailerOrders && status == domain.StatusFulfilled && s.inventory != nil {
		return s.fulfil(ctx, logName, id)
	}

	updated, err := s.orders.UpdateStatus(ctx, logName, id, status)
	if err != nil {
		return domain.UpdateOrderStatusResponse{}, err
	}
	metrics.OrderTransitionsTotal.WithLabelValues(logName, string(status)).Inc()
	return domain.UpdateOrderStatusResponse{Order: updated}, nil
}

// fulfil takes the order's lines out of stock before committing Fulfilled.
// Stock is put back when the status write is rejected, so a failure on
// either side leaves both unchanged.
func (s *orderService) fulfil(ctx context.Context, logName, id string) (domain.UpdateOrderStatusResponse, error) {
	current, err := s.GetOrder(ctx, logName, id)
	if err != nil {
		return domain.UpdateOrderStatusResponse{}, err
	}
	if !domain.CanTransition(logName, current.Status, domain.StatusFulfilled) {
		return domain.UpdateOrderStatusResponse{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, domain.StatusFulfilled)
	}

	report, err := s.inventory.ApplyFulfillment(ctx, current)
	if err != nil {
		log.Errorf("order %s left at %s, inventory update failed: %v", id, current.Status, err)
		return domain.UpdateOrderStatusResponse{}, fmt.Errorf("apply fulfillment for %s: %w", id, err)
	}

	updated, err := s.orders.UpdateStatus(ctx, logName, id, domain.StatusFulfilled)
	if err != nil {
		if restockErr := s.inventory.RevertFulfillment(ctx, report); restockErr != nil {
			log.Errorf("order %s: restock after rejected fulfilment failed: %v", id, restockErr)
		}
		return domain.UpdateOrderStatusResponse{}, err
	}
	metrics.OrderTransitionsTotal.WithLabelValues(logName, string(domain.StatusFulfilled)).Inc()
	return domain.UpdateOrderStatusResponse{Order: updated, Fulfillment: &report}, nil
}
