package domain

var (
	MessageSuccessGetDashboard      = "dashboard retrieved successfully"
	MessageSuccessGetDashboardStats = "dashboard statistics retrieved successfully"

	MessageFailedGetDashboard      = "failed to retrieve dashboard"
	MessageFailedGetDashboardStats = "failed to retrieve dashboard statistics"
)

type (
	OrderWithActions struct {
		Order
		Log         string        `json:"log"`
		NextActions []OrderStatus `json:"next_actions,omitempty"`
	}

	DashboardResponse struct {
		Role         string                        `json:"role"`
		Orders       map[string][]OrderWithActions `json:"orders"`
		CanAnalyze   bool                          `json:"can_analyze"`
		CanManage    bool                          `json:"can_manage_users"`
		HasInventory bool                          `json:"has_inventory"`
	}

	DashboardStatsResponse struct {
		TotalOrders    int     `json:"total_orders"`
		PendingOrders  int     `json:"pending_orders"`
		InventoryValue float64 `json:"inventory_value,omitempty"`
		LowStockItems  int     `json:"low_stock_items,omitempty"`
	}
)
