package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeStore is an in-memory Store. Batch operations are all-or-nothing: every
// ref is validated before anything is applied, matching the document store's
// batched writes.
type fakeStore struct {
	orders map[string]map[string]Order // customerID -> orderID -> order
	nextID int
	failAt string // orderID that makes any batch touching it fail
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[string]map[string]Order)}
}

func (f *fakeStore) put(o Order) string {
	f.nextID++
	o.ID = fmt.Sprintf("order-%d", f.nextID)
	if f.orders[o.CustomerID] == nil {
		f.orders[o.CustomerID] = make(map[string]Order)
	}
	f.orders[o.CustomerID][o.ID] = o
	return o.ID
}

func (f *fakeStore) UpsertDraft(_ context.Context, customerID, foodItemID string, mutate func(existing *Order) Order) (Order, error) {
	for id, o := range f.orders[customerID] {
		if o.FoodItemID == foodItemID && o.Status == StatusDraft {
			next := mutate(&o)
			next.ID = id
			f.orders[customerID][id] = next
			return next, nil
		}
	}
	created := mutate(nil)
	created.ID = ""
	id := f.put(created)
	created.ID = id
	return created, nil
}

func (f *fakeStore) ListByCustomer(_ context.Context, customerID string, status Status) ([]Order, error) {
	var out []Order
	for _, o := range f.orders[customerID] {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByStatus(_ context.Context, status Status) ([]Order, error) {
	var out []Order
	for _, byID := range f.orders {
		for _, o := range byID {
			if status == "" || o.Status == status {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateQuantity(_ context.Context, customerID, orderID string, quantity int, totalPrice int64) error {
	o, ok := f.orders[customerID][orderID]
	if !ok {
		return ErrNotFound
	}
	o.Quantity = quantity
	o.TotalPrice = totalPrice
	f.orders[customerID][orderID] = o
	return nil
}

func (f *fakeStore) Delete(_ context.Context, customerID, orderID string) error {
	if _, ok := f.orders[customerID][orderID]; !ok {
		return ErrNotFound
	}
	delete(f.orders[customerID], orderID)
	return nil
}

func (f *fakeStore) SetStatusBatch(_ context.Context, customerID string, orderIDs []string, status Status) error {
	for _, id := range orderIDs {
		if _, ok := f.orders[customerID][id]; !ok {
			return ErrNotFound
		}
		if id == f.failAt {
			return errors.New("batch commit failed")
		}
	}
	for _, id := range orderIDs {
		o := f.orders[customerID][id]
		o.Status = status
		f.orders[customerID][id] = o
	}
	return nil
}

func (f *fakeStore) DeleteBatch(_ context.Context, refs []OrderRef) error {
	for _, ref := range refs {
		if _, ok := f.orders[ref.CustomerID][ref.OrderID]; !ok {
			return ErrNotFound
		}
		if ref.OrderID == f.failAt {
			return errors.New("batch commit failed")
		}
	}
	for _, ref := range refs {
		delete(f.orders[ref.CustomerID], ref.OrderID)
	}
	return nil
}

func (f *fakeStore) Watch(_ context.Context, _ Status) (<-chan []Order, error) {
	ch := make(chan []Order)
	close(ch)
	return ch, nil
}

func newTestConf(t *testing.T) (Conf, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	conf, err := NewConf(store)
	if err != nil {
		t.Fatalf("NewConf: %v", err)
	}
	return conf, store
}

func TestAddToCartCreatesDraft(t *testing.T) {
	conf, _ := newTestConf(t)
	ctx := context.Background()

	order, err := conf.AddToCart(ctx, "cust-1", "item-1", 450, 2, "no onions")
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if order.Status != StatusDraft {
		t.Errorf("status = %q, want %q", order.Status, StatusDraft)
	}
	if order.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", order.Quantity)
	}
	if order.TotalPrice != 900 {
		t.Errorf("total = %d, want 900", order.TotalPrice)
	}
	if order.Comment != "no onions" {
		t.Errorf("comment = %q, want %q", order.Comment, "no onions")
	}
	if order.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestAddToCartIncrementsExistingDraft(t *testing.T) {
	conf, _ := newTestConf(t)
	ctx := context.Background()

	first, err := conf.AddToCart(ctx, "cust-1", "item-1", 450, 2, "no onions")
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	second, err := conf.AddToCart(ctx, "cust-1", "item-1", 450, 3, "")
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second add created a new order %q, want merge into %q", second.ID, first.ID)
	}
	if second.Quantity != 5 {
		t.Errorf("quantity = %d, want 5", second.Quantity)
	}
	if second.TotalPrice != 5*450 {
		t.Errorf("total = %d, want %d", second.TotalPrice, 5*450)
	}
	if second.Comment != "no onions" {
		t.Errorf("empty comment overwrote existing: %q", second.Comment)
	}

	items, err := conf.CartItems(ctx, "cust-1")
	if err != nil {
		t.Fatalf("CartItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("cart has %d items, want 1", len(items))
	}
}

func TestAddToCartDistinctItemsStaySeparate(t *testing.T) {
	conf, _ := newTestConf(t)
	ctx := context.Background()

	if _, err := conf.AddToCart(ctx, "cust-1", "item-1", 450, 1, ""); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if _, err := conf.AddToCart(ctx, "cust-1", "item-2", 600, 1, ""); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	items, err := conf.CartItems(ctx, "cust-1")
	if err != nil {
		t.Fatalf("CartItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("cart has %d items, want 2", len(items))
	}
}

func TestAddToCartRejectsBadInput(t *testing.T) {
	conf, _ := newTestConf(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		quantity int
		price    int64
	}{
		{"zero quantity", 0, 450},
		{"negative quantity", -1, 450},
		{"negative price", 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := conf.AddToCart(ctx, "cust-1", "item-1", tt.price, tt.quantity, ""); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestChangeQuantity(t *testing.T) {
	conf, store := newTestConf(t)
	ctx := context.Background()

	order, err := conf.AddToCart(ctx, "cust-1", "item-1", 450, 2, "")
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	updated, err := conf.ChangeQuantity(ctx, "cust-1", order.ID, 2, 450, 3)
	if err != nil {
		t.Fatalf("ChangeQuantity: %v", err)
	}
	if updated == nil {
		t.Fatal("order unexpectedly removed")
	}
	if updated.Quantity != 5 || updated.TotalPrice != 5*450 {
		t.Errorf("got quantity=%d total=%d, want 5 and %d", updated.Quantity, updated.TotalPrice, 5*450)
	}

	stored := store.orders["cust-1"][order.ID]
	if stored.Quantity != 5 || stored.TotalPrice != 5*450 {
		t.Errorf("stored quantity=%d total=%d, want 5 and %d", stored.Quantity, stored.TotalPrice, 5*450)
	}
}

func TestChangeQuantityRemovesAtZero(t *testing.T) {
	conf, store := newTestConf(t)
	ctx := context.Background()

	order, err := conf.AddToCart(ctx, "cust-1", "item-1", 450, 2, "")
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	removed, err := conf.ChangeQuantity(ctx, "cust-1", order.ID, 2, 450, -2)
	if err != nil {
		t.Fatalf("ChangeQuantity: %v", err)
	}
	if removed != nil {
		t.Errorf("expected removal, got order %+v", removed)
	}
	if _, ok := store.orders["cust-1"][order.ID]; ok {
		t.Error("order still present after removal")
	}
}

func TestChangeQuantityMissingOrder(t *testing.T) {
	conf, _ := newTestConf(t)

	_, err := conf.ChangeQuantity(context.Background(), "cust-1", "missing", 2, 450, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestConfirmOrder(t *testing.T) {
	conf, store := newTestConf(t)
	ctx := context.Background()

	a, _ := conf.AddToCart(ctx, "cust-1", "item-1", 450, 1, "")
	b, _ := conf.AddToCart(ctx, "cust-1", "item-2", 600, 1, "")

	if err := conf.ConfirmOrder(ctx, "cust-1", []string{a.ID, b.ID}); err != nil {
		t.Fatalf("ConfirmOrder: %v", err)
	}
	for _, id := range []string{a.ID, b.ID} {
		if got := store.orders["cust-1"][id].Status; got != StatusPending {
			t.Errorf("order %s status = %q, want %q", id, got, StatusPending)
		}
	}
}

func TestConfirmOrderEmpty(t *testing.T) {
	conf, _ := newTestConf(t)
	if err := conf.ConfirmOrder(context.Background(), "cust-1", nil); err == nil {
		t.Error("expected error for empty confirmation")
	}
}

func TestConfirmOrderBatchIsAllOrNothing(t *testing.T) {
	conf, store := newTestConf(t)
	ctx := context.Background()

	a, _ := conf.AddToCart(ctx, "cust-1", "item-1", 450, 1, "")
	b, _ := conf.AddToCart(ctx, "cust-1", "item-2", 600, 1, "")
	store.failAt = b.ID

	if err := conf.ConfirmOrder(ctx, "cust-1", []string{a.ID, b.ID}); err == nil {
		t.Fatal("expected batch failure")
	}
	if got := store.orders["cust-1"][a.ID].Status; got != StatusDraft {
		t.Errorf("order %s status = %q after failed batch, want %q", a.ID, got, StatusDraft)
	}
}

func TestFulfillCustomerOrders(t *testing.T) {
	conf, store := newTestConf(t)
	ctx := context.Background()

	a, _ := conf.AddToCart(ctx, "cust-1", "item-1", 450, 1, "")
	b, _ := conf.AddToCart(ctx, "cust-1", "item-2", 600, 1, "")
	if err := conf.ConfirmOrder(ctx, "cust-1", []string{a.ID}); err != nil {
		t.Fatalf("ConfirmOrder: %v", err)
	}

	pending, err := conf.CustomerPendingOrders(ctx, "cust-1")
	if err != nil {
		t.Fatalf("CustomerPendingOrders: %v", err)
	}
	// Hand the fulfiller a list with a draft mixed in; only the pending
	// order should transition.
	mixed := append(pending, store.orders["cust-1"][b.ID])
	count, err := conf.FulfillCustomerOrders(ctx, "cust-1", mixed)
	if err != nil {
		t.Fatalf("FulfillCustomerOrders: %v", err)
	}
	if count != 1 {
		t.Errorf("fulfilled %d orders, want 1", count)
	}
	if got := store.orders["cust-1"][a.ID].Status; got != StatusFulfilled {
		t.Errorf("order %s status = %q, want %q", a.ID, got, StatusFulfilled)
	}
	if got := store.orders["cust-1"][b.ID].Status; got != StatusDraft {
		t.Errorf("draft order %s status = %q, want untouched draft", b.ID, got)
	}
}

func TestFulfillCustomerOrdersNoPending(t *testing.T) {
	conf, _ := newTestConf(t)

	count, err := conf.FulfillCustomerOrders(context.Background(), "cust-1", nil)
	if err != nil {
		t.Fatalf("FulfillCustomerOrders: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestClearDraftCart(t *testing.T) {
	conf, store := newTestConf(t)
	ctx := context.Background()

	conf.AddToCart(ctx, "cust-1", "item-1", 450, 1, "")
	conf.AddToCart(ctx, "cust-1", "item-2", 600, 1, "")
	confirmed, _ := conf.AddToCart(ctx, "cust-1", "item-3", 700, 1, "")
	if err := conf.ConfirmOrder(ctx, "cust-1", []string{confirmed.ID}); err != nil {
		t.Fatalf("ConfirmOrder: %v", err)
	}

	deleted, err := conf.ClearDraftCart(ctx, "cust-1")
	if err != nil {
		t.Fatalf("ClearDraftCart: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d orders, want 2", deleted)
	}

	items, _ := conf.CartItems(ctx, "cust-1")
	if len(items) != 0 {
		t.Errorf("cart still has %d drafts", len(items))
	}
	if got := store.orders["cust-1"][confirmed.ID].Status; got != StatusPending {
		t.Errorf("pending order was touched: status %q", got)
	}
}

func TestClearDraftCartEmpty(t *testing.T) {
	conf, _ := newTestConf(t)

	deleted, err := conf.ClearDraftCart(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("ClearDraftCart: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestClearFulfilledOrdersAcrossCustomers(t *testing.T) {
	conf, store := newTestConf(t)
	ctx := context.Background()

	for _, cust := range []string{"cust-1", "cust-2"} {
		o, _ := conf.AddToCart(ctx, cust, "item-1", 450, 1, "")
		if err := conf.ConfirmOrder(ctx, cust, []string{o.ID}); err != nil {
			t.Fatalf("ConfirmOrder: %v", err)
		}
		pending, _ := conf.CustomerPendingOrders(ctx, cust)
		if _, err := conf.FulfillCustomerOrders(ctx, cust, pending); err != nil {
			t.Fatalf("FulfillCustomerOrders: %v", err)
		}
	}
	keep, _ := conf.AddToCart(ctx, "cust-1", "item-2", 600, 1, "")

	deleted, err := conf.ClearFulfilledOrders(ctx, []string{"cust-1", "cust-2"})
	if err != nil {
		t.Fatalf("ClearFulfilledOrders: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d orders, want 2", deleted)
	}
	if _, ok := store.orders["cust-1"][keep.ID]; !ok {
		t.Error("draft order was deleted alongside fulfilled ones")
	}
}

func TestDeleteCustomerOrders(t *testing.T) {
	conf, _ := newTestConf(t)
	ctx := context.Background()

	conf.AddToCart(ctx, "cust-1", "item-1", 450, 1, "")
	o, _ := conf.AddToCart(ctx, "cust-1", "item-2", 600, 1, "")
	if err := conf.ConfirmOrder(ctx, "cust-1", []string{o.ID}); err != nil {
		t.Fatalf("ConfirmOrder: %v", err)
	}
	conf.AddToCart(ctx, "cust-2", "item-1", 450, 1, "")

	if err := conf.DeleteCustomerOrders(ctx, "cust-1"); err != nil {
		t.Fatalf("DeleteCustomerOrders: %v", err)
	}

	all, _ := conf.AllOrders(ctx)
	if len(all) != 1 {
		t.Fatalf("%d orders remain, want 1", len(all))
	}
	if all[0].CustomerID != "cust-2" {
		t.Errorf("surviving order belongs to %q, want cust-2", all[0].CustomerID)
	}
}

func TestRemoveOrder(t *testing.T) {
	conf, _ := newTestConf(t)
	ctx := context.Background()

	o, _ := conf.AddToCart(ctx, "cust-1", "item-1", 450, 1, "")
	if err := conf.RemoveOrder(ctx, "cust-1", o.ID); err != nil {
		t.Fatalf("RemoveOrder: %v", err)
	}
	if err := conf.RemoveOrder(ctx, "cust-1", o.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second remove err = %v, want ErrNotFound", err)
	}
}

func TestDraftTimestampIsUTC(t *testing.T) {
	conf, _ := newTestConf(t)

	before := time.Now().UTC()
	order, err := conf.AddToCart(context.Background(), "cust-1", "item-1", 450, 1, "")
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	after := time.Now().UTC()

	if order.Timestamp.Before(before) || order.Timestamp.After(after) {
		t.Errorf("timestamp %v outside [%v, %v]", order.Timestamp, before, after)
	}
}
