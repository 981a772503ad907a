package dashboard

import (
	"context"
	"fmt"
	"slices"

	"farmxchain/domain"
	"farmxchain/pkg/inventory"
	"farmxchain/pkg/order"
)

// Role is what a dashboard may do. Every role-specific decision is read from
// here rather than branching on the role name.
type Role struct {
	Name         string
	Places       []string // logs this role places new orders into
	Manages      []string // logs whose orders this role may advance
	Reads        []string // logs this role may list
	CanAnalyze   bool
	CanManage    bool
	HasInventory bool
}

var roles = map[string]Role{
	domain.RoleAdmin: {
		Name:      domain.RoleAdmin,
		CanManage: true,
	},
	domain.RoleFarmer: {
		Name:       domain.RoleFarmer,
		CanAnalyze: true,
	},
	domain.RoleDistributor: {
		Name:         domain.RoleDistributor,
		Manages:      []string{domain.LogRetailerOrders},
		Reads:        []string{domain.LogRetailerOrders},
		CanAnalyze:   true,
		HasInventory: true,
	},
	domain.RoleRetailer: {
		Name:    domain.RoleRetailer,
		Places:  []string{domain.LogRetailerOrders},
		Manages: []string{domain.LogCustomerOrders},
		Reads:   []string{domain.LogCustomerOrders, domain.LogRetailerOrders},
	},
	domain.RoleCustomer: {
		Name:       domain.RoleCustomer,
		Places:     []string{domain.LogCustomerOrders},
		Reads:      []string{domain.LogCustomerOrders},
		CanAnalyze: true,
	},
}

// RoleFor looks up the capability set for a role name.
func RoleFor(name string) (Role, error) {
	r, ok := roles[domain.NormalizeRole(name)]
	if !ok {
		return Role{}, domain.ErrInvalidRole
	}
	return r, nil
}

type (
	DashboardService interface {
		For(role string) (*Dashboard, error)
	}

	dashboardService struct {
		orders    order.OrderService
		inventory inventory.InventoryService
	}

	Dashboard struct {
		role      Role
		orders    order.OrderService
		inventory inventory.InventoryService
	}
)

func NewDashboardService(orders order.OrderService, inventory inventory.InventoryService) DashboardService {
	return &dashboardService{orders: orders, inventory: inventory}
}

func (s *dashboardService) For(role string) (*Dashboard, error) {
	r, err := RoleFor(role)
	if err != nil {
		return nil, err
	}
	return &Dashboard{role: r, orders: s.orders, inventory: s.inventory}, nil
}

func (d *Dashboard) Role() Role {
	return d.role
}

func (d *Dashboard) Overview(ctx context.Context) (domain.DashboardResponse, error) {
	response := domain.DashboardResponse{
		Role:         d.role.Name,
		Orders:       make(map[string][]domain.OrderWithActions, len(d.role.Reads)),
		CanAnalyze:   d.role.CanAnalyze,
		CanManage:    d.role.CanManage,
		HasInventory: d.role.HasInventory,
	}
	for _, logName := range d.role.Reads {
		orders, err := d.Orders(ctx, logName)
		if err != nil {
			return domain.DashboardResponse{}, err
		}
		response.Orders[logName] = orders
	}
	return response, nil
}

func (d *Dashboard) Orders(ctx context.Context, logName string) ([]domain.OrderWithActions, error) {
	if !slices.Contains(d.role.Reads, logName) {
		return nil, d.forbidden("read", logName)
	}
	orders, err := d.orders.ListOrders(ctx, logName)
	if err != nil {
		return nil, err
	}

	out := make([]domain.OrderWithActions, 0, len(orders))
	for _, o := range orders {
		out = append(out, domain.OrderWithActions{
			Order:       o,
			Log:         logName,
			NextActions: d.NextActions(logName, o),
		})
	}
	return out, nil
}

func (d *Dashboard) Place(ctx context.Context, req domain.PlaceOrderRequest) (domain.Order, error) {
	if len(d.role.Places) == 0 {
		return domain.Order{}, d.forbidden("place orders", "")
	}
	return d.orders.PlaceOrder(ctx, d.role.Name, req)
}

func (d *Dashboard) Advance(ctx context.Context, logName, id string, status domain.OrderStatus) (domain.UpdateOrderStatusResponse, error) {
	if !slices.Contains(d.role.Manages, logName) {
		return domain.UpdateOrderStatusResponse{}, d.forbidden("advance", logName)
	}
	return d.orders.UpdateStatus(ctx, logName, id, status)
}

func (d *Dashboard) Inventory(ctx context.Context) ([]domain.InventoryItemResponse, error) {
	if !d.role.HasInventory {
		return nil, d.forbidden("view inventory", "")
	}
	return d.inventory.GetInventory(ctx)
}

func (d *Dashboard) Stats(ctx context.Context) (domain.DashboardStatsResponse, error) {
	var stats domain.DashboardStatsResponse
	for _, logName := range d.role.Reads {
		orders, err := d.orders.ListOrders(ctx, logName)
		if err != nil {
			return domain.DashboardStatsResponse{}, err
		}
		stats.TotalOrders += len(orders)
		for _, o := range orders {
			if o.Status == domain.StatusPending {
				stats.PendingOrders++
			}
		}
	}

	if d.role.HasInventory {
		value, low, err := d.inventory.GetInventoryValue(ctx)
		if err != nil {
			return domain.DashboardStatsResponse{}, err
		}
		stats.InventoryValue = value
		stats.LowStockItems = low
	}
	return stats, nil
}

// NextActions lists the statuses this role may move o to. Empty for logs the role does not manage.
func (d *Dashboard) NextActions(logName string, o domain.Order) []domain.OrderStatus {
	if !slices.Contains(d.role.Manages, logName) {
		return nil
	}
	return domain.NextStatuses(logName, o.Status)
}

func (d *Dashboard) forbidden(action, logName string) error {
	if logName == "" {
		return fmt.Errorf("%w: %s cannot %s", domain.ErrForbiddenAction, d.role.Name, action)
	}
	return fmt.Errorf("%w: %s cannot %s %s", domain.ErrForbiddenAction, d.role.Name, action, logName)
}
