package orders

import "context"

// Store is the document-store surface the lifecycle needs. The Firestore
// implementation lives in internal/stores/firestore; tests use an in-memory
// fake.
type Store interface {
	// UpsertDraft runs mutate inside a single transaction against the
	// draft order for (customerID, foodItemID). mutate receives the
	// existing draft, or nil when none exists, and returns the document
	// to write. The find-or-create decision and the write are isolated,
	// so two concurrent adds cannot both create a draft for the same item.
	UpsertDraft(ctx context.Context, customerID, foodItemID string, mutate func(existing *Order) Order) (Order, error)

	// ListByCustomer returns the customer's orders with the given status;
	// an empty status returns all of them.
	ListByCustomer(ctx context.Context, customerID string, status Status) ([]Order, error)

	// ListByStatus returns orders across all customers with the given
	// status; an empty status returns every order.
	ListByStatus(ctx context.Context, status Status) ([]Order, error)

	UpdateQuantity(ctx context.Context, customerID, orderID string, quantity int, totalPrice int64) error
	Delete(ctx context.Context, customerID, orderID string) error

	// SetStatusBatch transitions the listed orders in one atomic batch:
	// either every order gets the new status or none do.
	SetStatusBatch(ctx context.Context, customerID string, orderIDs []string, status Status) error

	// DeleteBatch deletes the referenced orders in one atomic batch.
	DeleteBatch(ctx context.Context, refs []OrderRef) error

	// Watch streams snapshots of all orders with the given status until
	// ctx is cancelled.
	Watch(ctx context.Context, status Status) (<-chan []Order, error)
}
