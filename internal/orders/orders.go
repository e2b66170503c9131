package orders

import (
	"context"
	"fmt"
	"time"
)

// Conf exposes the order lifecycle operations over a Store.
type Conf struct {
	store Store
}

func NewConf(store Store) (Conf, error) {
	if store == nil {
		return Conf{}, fmt.Errorf("store is nil")
	}
	return Conf{store: store}, nil
}

// AddToCart locates the existing draft for (customerID, foodItemID) and
// increments it by quantity, or creates a new draft when none exists. The
// whole find-or-create runs in one transaction. An empty comment keeps the
// existing one.
func (c *Conf) AddToCart(ctx context.Context, customerID, foodItemID string, unitPrice int64, quantity int, comment string) (Order, error) {
	if quantity < 1 {
		return Order{}, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	if unitPrice < 0 {
		return Order{}, fmt.Errorf("unit price must not be negative, got %d", unitPrice)
	}

	order, err := c.store.UpsertDraft(ctx, customerID, foodItemID, func(existing *Order) Order {
		if existing == nil {
			return Order{
				CustomerID: customerID,
				FoodItemID: foodItemID,
				Quantity:   quantity,
				UnitPrice:  unitPrice,
				TotalPrice: int64(quantity) * unitPrice,
				Status:     StatusDraft,
				Comment:    comment,
				Timestamp:  time.Now().UTC(),
			}
		}
		next := *existing
		next.Quantity += quantity
		next.TotalPrice = int64(next.Quantity) * unitPrice
		if comment != "" {
			next.Comment = comment
		}
		return next
	})
	if err != nil {
		return Order{}, fmt.Errorf("failed to upsert draft order: %w", err)
	}
	return order, nil
}

// ChangeQuantity applies delta to the order's quantity. When the result drops
// below 1 the order is deleted and a nil order is returned. Otherwise the
// quantity and total price are updated together.
func (c *Conf) ChangeQuantity(ctx context.Context, customerID, orderID string, currentQuantity int, unitPrice int64, delta int) (*Order, error) {
	newQuantity := currentQuantity + delta
	if newQuantity < 1 {
		if err := c.store.Delete(ctx, customerID, orderID); err != nil {
			return nil, fmt.Errorf("failed to delete order %s: %w", orderID, err)
		}
		return nil, nil
	}

	totalPrice := int64(newQuantity) * unitPrice
	if err := c.store.UpdateQuantity(ctx, customerID, orderID, newQuantity, totalPrice); err != nil {
		return nil, fmt.Errorf("failed to update order %s: %w", orderID, err)
	}
	return &Order{
		ID:         orderID,
		CustomerID: customerID,
		Quantity:   newQuantity,
		UnitPrice:  unitPrice,
		TotalPrice: totalPrice,
		Status:     StatusDraft,
	}, nil
}

// RemoveOrder deletes the order regardless of status.
func (c *Conf) RemoveOrder(ctx context.Context, customerID, orderID string) error {
	if err := c.store.Delete(ctx, customerID, orderID); err != nil {
		return fmt.Errorf("failed to remove order %s: %w", orderID, err)
	}
	return nil
}

// CartItems returns the customer's current draft orders.
func (c *Conf) CartItems(ctx context.Context, customerID string) ([]Order, error) {
	items, err := c.store.ListByCustomer(ctx, customerID, StatusDraft)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft orders: %w", err)
	}
	return items, nil
}

// ConfirmOrder transitions the listed draft orders to pending in one atomic
// batch. The caller is expected to have just read the ids from its draft set;
// statuses are not re-validated inside the batch.
func (c *Conf) ConfirmOrder(ctx context.Context, customerID string, orderIDs []string) error {
	if len(orderIDs) == 0 {
		return fmt.Errorf("no orders to confirm")
	}
	if err := c.store.SetStatusBatch(ctx, customerID, orderIDs, StatusPending); err != nil {
		return fmt.Errorf("failed to confirm orders: %w", err)
	}
	return nil
}

// FulfillCustomerOrders transitions every pending order in the given set to
// fulfilled in one atomic batch and returns the count transitioned. An empty
// set performs no write.
func (c *Conf) FulfillCustomerOrders(ctx context.Context, customerID string, pending []Order) (int, error) {
	var ids []string
	for _, o := range pending {
		if o.Status == StatusPending {
			ids = append(ids, o.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := c.store.SetStatusBatch(ctx, customerID, ids, StatusFulfilled); err != nil {
		return 0, fmt.Errorf("failed to fulfill orders: %w", err)
	}
	return len(ids), nil
}

// ClearDraftCart re-queries the customer's draft orders and deletes them all
// in one atomic batch. The re-read matters: drafts added after any cached
// snapshot must be deleted too.
func (c *Conf) ClearDraftCart(ctx context.Context, customerID string) (int, error) {
	drafts, err := c.store.ListByCustomer(ctx, customerID, StatusDraft)
	if err != nil {
		return 0, fmt.Errorf("failed to list draft orders: %w", err)
	}
	if len(drafts) == 0 {
		return 0, nil
	}

	refs := make([]OrderRef, 0, len(drafts))
	for _, o := range drafts {
		refs = append(refs, OrderRef{CustomerID: customerID, OrderID: o.ID})
	}
	if err := c.store.DeleteBatch(ctx, refs); err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return len(refs), nil
}

// ClearFulfilledOrders deletes every fulfilled order of every listed customer
// in a single atomic batch and returns the total deleted.
func (c *Conf) ClearFulfilledOrders(ctx context.Context, customerIDs []string) (int, error) {
	var refs []OrderRef
	for _, customerID := range customerIDs {
		fulfilled, err := c.store.ListByCustomer(ctx, customerID, StatusFulfilled)
		if err != nil {
			return 0, fmt.Errorf("failed to list fulfilled orders for customer %s: %w", customerID, err)
		}
		for _, o := range fulfilled {
			refs = append(refs, OrderRef{CustomerID: customerID, OrderID: o.ID})
		}
	}
	if len(refs) == 0 {
		return 0, nil
	}
	if err := c.store.DeleteBatch(ctx, refs); err != nil {
		return 0, fmt.Errorf("failed to clear fulfilled orders: %w", err)
	}
	return len(refs), nil
}

// DeleteCustomerOrders removes every order under the customer, regardless of
// status, in one atomic batch. Used during account deletion.
func (c *Conf) DeleteCustomerOrders(ctx context.Context, customerID string) error {
	all, err := c.store.ListByCustomer(ctx, customerID, "")
	if err != nil {
		return fmt.Errorf("failed to list orders for customer %s: %w", customerID, err)
	}
	if len(all) == 0 {
		return nil
	}
	refs := make([]OrderRef, 0, len(all))
	for _, o := range all {
		refs = append(refs, OrderRef{CustomerID: customerID, OrderID: o.ID})
	}
	if err := c.store.DeleteBatch(ctx, refs); err != nil {
		return fmt.Errorf("failed to delete orders for customer %s: %w", customerID, err)
	}
	return nil
}

// CustomerPendingOrders returns one customer's pending orders.
func (c *Conf) CustomerPendingOrders(ctx context.Context, customerID string) ([]Order, error) {
	pending, err := c.store.ListByCustomer(ctx, customerID, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending orders for customer %s: %w", customerID, err)
	}
	return pending, nil
}

// PendingOrders returns pending orders across all customers.
func (c *Conf) PendingOrders(ctx context.Context) ([]Order, error) {
	pending, err := c.store.ListByStatus(ctx, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending orders: %w", err)
	}
	return pending, nil
}

// AllOrders returns every order across all customers.
func (c *Conf) AllOrders(ctx context.Context) ([]Order, error) {
	all, err := c.store.ListByStatus(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return all, nil
}

// WatchPending streams snapshots of the pending order set until ctx is
// cancelled.
func (c *Conf) WatchPending(ctx context.Context) (<-chan []Order, error) {
	return c.store.Watch(ctx, StatusPending)
}
