package dashboard

import (
	"context"
	"testing"

	"farmxchain/domain"
	"farmxchain/pkg/inventory"
	"farmxchain/pkg/order"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) DashboardService {
	t.Helper()
	ctx := context.Background()

	ledger, err := order.NewLedger(ctx, order.NewMemoryEventRepository())
	require.NoError(t, err)
	t.Cleanup(ledger.Close)

	invRepo := inventory.NewMemoryInventoryRepository()
	require.NoError(t, invRepo.SeedItems(ctx, inventory.DefaultInventory()))
	inv := inventory.NewInventoryService(invRepo)

	return NewDashboardService(order.NewOrderService(ledger, inv, validator.New()), inv)
}

func TestFor_UnknownRole(t *testing.T) {
	_, err := newService(t).For("auditor")
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestDashboard_OrderFlowAcrossRoles(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	retailer, err := svc.For("Retailer")
	require.NoError(t, err)
	distributor, err := svc.For(domain.RoleDistributor)
	require.NoError(t, err)

	placed, err := retailer.Place(ctx, domain.PlaceOrderRequest{
		Items: []domain.OrderItem{{Name: "Carrots", Quantity: 10, UnitPrice: 1.8}},
	})
	require.NoError(t, err)

	// Retailers place into retailerOrders but only distributors may advance them.
	_, err = retailer.Advance(ctx, domain.LogRetailerOrders, placed.ID, domain.StatusProcessing)
	assert.ErrorIs(t, err, domain.ErrForbiddenAction)

	view, err := distributor.Orders(ctx, domain.LogRetailerOrders)
	require.NoError(t, err)
	require.Len(t, view, 1)
	assert.Equal(t, []domain.OrderStatus{domain.StatusProcessing}, view[0].NextActions)

	retailerView, err := retailer.Orders(ctx, domain.LogRetailerOrders)
	require.NoError(t, err)
	assert.Empty(t, retailerView[0].NextActions)

	for _, st := range []domain.OrderStatus{domain.StatusProcessing, domain.StatusShipped} {
		_, err := distributor.Advance(ctx, domain.LogRetailerOrders, placed.ID, st)
		require.NoError(t, err)
	}
	resp, err := distributor.Advance(ctx, domain.LogRetailerOrders, placed.ID, domain.StatusFulfilled)
	require.NoError(t, err)
	require.NotNil(t, resp.Fulfillment)
	assert.Equal(t, 50, resp.Fulfillment.Adjusted[0].Remaining)

	_, err = distributor.Orders(ctx, domain.LogCustomerOrders)
	assert.ErrorIs(t, err, domain.ErrForbiddenAction)
}

func TestDashboard_CustomerAndFarmerCapabilities(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	customer, err := svc.For(domain.RoleCustomer)
	require.NoError(t, err)
	_, err = customer.Place(ctx, domain.PlaceOrderRequest{
		Items: []domain.OrderItem{{Name: "Banana", Quantity: 2, UnitPrice: 2.8}},
	})
	require.NoError(t, err)
	_, err = customer.Inventory(ctx)
	assert.ErrorIs(t, err, domain.ErrForbiddenAction)

	overview, err := customer.Overview(ctx)
	require.NoError(t, err)
	assert.Len(t, overview.Orders[domain.LogCustomerOrders], 1)
	assert.True(t, overview.CanAnalyze)

	farmer, err := svc.For(domain.RoleFarmer)
	require.NoError(t, err)
	assert.True(t, farmer.Role().CanAnalyze)
	_, err = farmer.Place(ctx, domain.PlaceOrderRequest{
		Items: []domain.OrderItem{{Name: "Banana", Quantity: 1, UnitPrice: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrForbiddenAction)

	retailer, err := svc.For(domain.RoleRetailer)
	require.NoError(t, err)
	stats, err := retailer.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Zero(t, stats.InventoryValue)
}

func TestDashboard_DistributorStatsIncludeInventory(t *testing.T) {
	ctx := context.Background()
	distributor, err := newService(t).For(domain.RoleDistributor)
	require.NoError(t, err)

	stats, err := distributor.Stats(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 918.0, stats.InventoryValue, 0.001)

	items, err := distributor.Inventory(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 4)
}
