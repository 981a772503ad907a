package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	MessageSuccessPlaceOrder    = "order placed successfully"
	MessageSuccessGetOrders     = "orders retrieved successfully"
	MessageSuccessUpdateStatus  = "order status updated successfully"
	MessageSuccessCreatePayment = "payment created successfully"

	MessageFailedPlaceOrder    = "failed to place order"
	MessageFailedGetOrders     = "failed to retrieve orders"
	MessageFailedUpdateStatus  = "failed to update order status"
	MessageFailedCreatePayment = "failed to create payment"

	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateOrder    = errors.New("order already exists")
	ErrUnknownLog        = errors.New("unknown order log")
	ErrUnknownRolePair   = errors.New("no order log for role pair")
	ErrInvalidTransition = fmt.Errorf("%w: status transition not allowed", ErrValidation)
	ErrInvalidOrder      = fmt.Errorf("%w: invalid order", ErrValidation)
	ErrForbiddenAction   = errors.New("action not allowed for role")
	ErrLedgerClosed      = errors.New("order ledger closed")
	ErrPaymentFailed     = errors.New("payment could not be created")
)

// Shared slot names. The order logs are also the names dashboards use in URLs.
const (
	SlotUser           = "user"
	LogCustomerOrders  = "customerOrders"
	LogRetailerOrders  = "retailerOrders"
	OrderDateLayout    = "2006-01-02"
	CustomerOrderIDFmt = "ORD-%d"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "Pending"
	StatusProcessing     OrderStatus = "Processing"
	StatusShipped        OrderStatus = "Shipped"
	StatusReadyForPickup OrderStatus = "Ready for Pickup"
	StatusFulfilled      OrderStatus = "Fulfilled"
	StatusDelivered      OrderStatus = "Delivered"
)

// transitions holds the allowed forward moves per log. Anything absent is rejected.
var transitions = map[string]map[OrderStatus][]OrderStatus{
	LogRetailerOrders: {
		StatusPending:    {StatusProcessing},
		StatusProcessing: {StatusShipped},
		StatusShipped:    {StatusFulfilled, StatusDelivered},
	},
	LogCustomerOrders: {
		StatusPending:        {StatusReadyForPickup},
		StatusReadyForPickup: {StatusDelivered},
		StatusProcessing:     {StatusDelivered},
	},
}

type (
	OrderItem struct {
		Name      string  `json:"name" validate:"required"`
		Quantity  int     `json:"quantity" validate:"required,min=1"`
		UnitPrice float64 `json:"price" validate:"gte=0"`
	}

	Order struct {
		ID              string      `json:"id"`
		OriginRole      string      `json:"origin_role"`
		DestinationRole string      `json:"destination_role"`
		Items           []OrderItem `json:"items"`
		Total           float64     `json:"total"`
		Date            string      `json:"date"`
		Status          OrderStatus `json:"status"`
		PlacedBy        string      `json:"placed_by,omitempty"`
	}

	PlaceOrderRequest struct {
		Items    []OrderItem `json:"items" validate:"required,min=1,dive"`
		PlacedBy string      `json:"placed_by" validate:"omitempty,email"`
	}

	UpdateOrderStatusRequest struct {
		Status OrderStatus `json:"status" validate:"required"`
	}

	UpdateOrderStatusResponse struct {
		Order       Order              `json:"order"`
		Fulfillment *FulfillmentReport `json:"fulfillment,omitempty"`
	}

	CreatePaymentResponse struct {
		OrderID     string  `json:"order_id"`
		Amount      float64 `json:"amount"`
		Token       string  `json:"token"`
		RedirectURL string  `json:"redirect_url"`
	}
)

func IsKnownLog(log string) bool {
	_, ok := transitions[log]
	return ok
}

// CanTransition reports whether an order in log may move from one status to another.
func CanTransition(log string, from, to OrderStatus) bool {
	for _, next := range transitions[log][from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses reachable in one step from the given status.
func NextStatuses(log string, from OrderStatus) []OrderStatus {
	next := transitions[log][from]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

func IsTerminal(status OrderStatus) bool {
	return status == StatusFulfilled || status == StatusDelivered
}

// DestinationFor returns the role that receives orders placed by origin.
func DestinationFor(origin string) (string, error) {
	switch NormalizeRole(origin) {
	case RoleCustomer:
		return RoleRetailer, nil
	case RoleRetailer:
		return RoleDistributor, nil
	}
	return "", ErrUnknownRolePair
}

// LogForRoles maps an (origin, destination) role pair to its shared log.
func LogForRoles(origin, destination string) (string, error) {
	switch {
	case NormalizeRole(origin) == RoleCustomer && NormalizeRole(destination) == RoleRetailer:
		return LogCustomerOrders, nil
	case NormalizeRole(origin) == RoleRetailer && NormalizeRole(destination) == RoleDistributor:
		return LogRetailerOrders, nil
	}
	return "", ErrUnknownRolePair
}

// OrderTotal sums quantity × unit price without float drift.
func OrderTotal(items []OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.InexactFloat64()
}
