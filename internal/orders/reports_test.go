package orders

import (
	"testing"
	"time"

	"reservation-service/internal/catalog"
	"reservation-service/internal/customers"
)

func TestGroupPendingByCustomer(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	custs := []customers.Customer{
		{ID: "cust-1", FirstName: "Ana", LastName: "Silva"},
		{ID: "cust-2", FirstName: "Ben", LastName: "Okoro"},
		{ID: "cust-3", FirstName: "Cara", LastName: "Lund"},
	}
	all := []Order{
		{ID: "o1", CustomerID: "cust-1", Status: StatusPending, TotalPrice: 900, Timestamp: base.Add(1 * time.Hour)},
		{ID: "o2", CustomerID: "cust-1", Status: StatusPending, TotalPrice: 600, Timestamp: base.Add(3 * time.Hour)},
		{ID: "o3", CustomerID: "cust-1", Status: StatusDraft, TotalPrice: 450, Timestamp: base.Add(5 * time.Hour)},
		{ID: "o4", CustomerID: "cust-2", Status: StatusPending, TotalPrice: 1200, Timestamp: base.Add(2 * time.Hour)},
		{ID: "o5", CustomerID: "cust-2", Status: StatusFulfilled, TotalPrice: 800, Timestamp: base.Add(6 * time.Hour)},
		{ID: "o6", CustomerID: "ghost", Status: StatusPending, TotalPrice: 100, Timestamp: base},
	}

	groups := GroupPendingByCustomer(all, custs)

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	// cust-1's newest pending order (o2, +3h) beats cust-2's (+2h).
	if groups[0].Customer.ID != "cust-1" || groups[1].Customer.ID != "cust-2" {
		t.Errorf("group order = [%s, %s], want [cust-1, cust-2]", groups[0].Customer.ID, groups[1].Customer.ID)
	}

	first := groups[0]
	if len(first.Orders) != 2 {
		t.Fatalf("cust-1 has %d orders, want 2 (draft excluded)", len(first.Orders))
	}
	if first.Orders[0].ID != "o2" || first.Orders[1].ID != "o1" {
		t.Errorf("cust-1 orders = [%s, %s], want newest first [o2, o1]", first.Orders[0].ID, first.Orders[1].ID)
	}
	if first.TotalSpent != 1500 {
		t.Errorf("cust-1 total = %d, want 1500", first.TotalSpent)
	}
	if !first.LastOrderDate.Equal(base.Add(3 * time.Hour)) {
		t.Errorf("cust-1 last order date = %v, want %v", first.LastOrderDate, base.Add(3*time.Hour))
	}

	second := groups[1]
	if len(second.Orders) != 1 || second.Orders[0].ID != "o4" {
		t.Errorf("cust-2 orders = %+v, want only o4 (fulfilled excluded)", second.Orders)
	}
	if second.TotalSpent != 1200 {
		t.Errorf("cust-2 total = %d, want 1200", second.TotalSpent)
	}
}

func TestGroupPendingByCustomerEmpty(t *testing.T) {
	groups := GroupPendingByCustomer(nil, []customers.Customer{{ID: "cust-1"}})
	if len(groups) != 0 {
		t.Errorf("got %d groups for no orders, want 0", len(groups))
	}
}

func TestWeeklySalesReport(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	items := []catalog.FoodItem{
		{ID: "item-1", Name: "Margherita"},
		{ID: "item-2", Name: "Carbonara"},
	}
	all := []Order{
		{FoodItemID: "item-1", Status: StatusPending, Quantity: 2, TotalPrice: 1800, Timestamp: now.AddDate(0, 0, -1)},
		{FoodItemID: "item-1", Status: StatusFulfilled, Quantity: 1, TotalPrice: 900, Timestamp: now.AddDate(0, 0, -3)},
		{FoodItemID: "item-2", Status: StatusFulfilled, Quantity: 1, TotalPrice: 1200, Timestamp: now.AddDate(0, 0, -9)}, // too old
		{FoodItemID: "item-2", Status: StatusDraft, Quantity: 4, TotalPrice: 4800, Timestamp: now},                       // draft excluded
		{FoodItemID: "deleted-item", Status: StatusPending, Quantity: 3, TotalPrice: 600, Timestamp: now.AddDate(0, 0, -2)},
	}

	report := WeeklySalesReport(all, items, now)

	if got := report.ItemsSold["Margherita"]; got != 3 {
		t.Errorf("Margherita sold = %d, want 3", got)
	}
	if _, ok := report.ItemsSold["Carbonara"]; ok {
		t.Error("Carbonara should not appear: one order too old, one a draft")
	}
	if got := report.ItemsSold[UnknownItemName]; got != 3 {
		t.Errorf("%s sold = %d, want 3", UnknownItemName, got)
	}
	if report.TotalRevenue != 1800+900+600 {
		t.Errorf("revenue = %d, want %d", report.TotalRevenue, 1800+900+600)
	}
}

func TestWeeklySalesReportInclusiveCutoff(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	all := []Order{
		{FoodItemID: "x", Status: StatusPending, Quantity: 1, TotalPrice: 500, Timestamp: now.AddDate(0, 0, -7)},
		{FoodItemID: "x", Status: StatusPending, Quantity: 1, TotalPrice: 500, Timestamp: now.AddDate(0, 0, -7).Add(-time.Second)},
	}

	report := WeeklySalesReport(all, nil, now)

	if got := report.ItemsSold[UnknownItemName]; got != 1 {
		t.Errorf("sold = %d, want exactly the order on the 7-day boundary", got)
	}
	if report.TotalRevenue != 500 {
		t.Errorf("revenue = %d, want 500", report.TotalRevenue)
	}
}
