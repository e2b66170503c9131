package orders

import (
	"sort"
	"time"

	"reservation-service/internal/catalog"
	"reservation-service/internal/customers"
)

// UnknownItemName is the report bucket for orders whose food item no longer
// exists. Deleted items that shared a name end up merged.
const UnknownItemName = "Unknown Item"

// CustomerGroup is one customer's pending reservations, newest first.
type CustomerGroup struct {
	Customer      customers.Customer `json:"customer"`
	Orders        []Order            `json:"orders"`
	LastOrderDate time.Time          `json:"last_order_date"`
	TotalSpent    int64              `json:"total_spent"`
}

// WeeklyReport aggregates the trailing week's non-draft orders.
type WeeklyReport struct {
	ItemsSold    map[string]int `json:"items_sold"`
	TotalRevenue int64          `json:"total_revenue"`
}

// GroupPendingByCustomer filters to pending orders and groups them by owning
// customer. Orders within a group are sorted by timestamp descending (stable
// on ties); groups are sorted by their most recent order, descending.
// Customers without pending orders produce no group.
func GroupPendingByCustomer(all []Order, custs []customers.Customer) []CustomerGroup {
	byCustomer := make(map[string][]Order)
	for _, o := range all {
		if o.Status != StatusPending {
			continue
		}
		byCustomer[o.CustomerID] = append(byCustomer[o.CustomerID], o)
	}

	var groups []CustomerGroup
	for _, cust := range custs {
		pending, ok := byCustomer[cust.ID]
		if !ok {
			continue
		}
		sort.SliceStable(pending, func(i, j int) bool {
			return pending[i].Timestamp.After(pending[j].Timestamp)
		})
		var totalSpent int64
		for _, o := range pending {
			totalSpent += o.TotalPrice
		}
		groups = append(groups, CustomerGroup{
			Customer:      cust,
			Orders:        pending,
			LastOrderDate: pending[0].Timestamp,
			TotalSpent:    totalSpent,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].LastOrderDate.After(groups[j].LastOrderDate)
	})
	return groups
}

// WeeklySalesReport aggregates orders from the last 7 days (inclusive lower
// bound now-7d), excluding drafts. Quantities are bucketed per item name,
// with orders referencing a missing item falling into UnknownItemName.
func WeeklySalesReport(all []Order, items []catalog.FoodItem, now time.Time) WeeklyReport {
	nameByID := make(map[string]string, len(items))
	for _, item := range items {
		nameByID[item.ID] = item.Name
	}

	cutoff := now.AddDate(0, 0, -7)
	report := WeeklyReport{ItemsSold: make(map[string]int)}
	for _, o := range all {
		if o.Status == StatusDraft || o.Timestamp.Before(cutoff) {
			continue
		}
		name, ok := nameByID[o.FoodItemID]
		if !ok {
			name = UnknownItemName
		}
		report.ItemsSold[name] += o.Quantity
		report.TotalRevenue += o.TotalPrice
	}
	return report
}
