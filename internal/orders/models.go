package orders

import (
	"errors"
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
)

// Order represents a single reservation line item stored under
// customers/{customerId}/orders/{orderId}. Prices are in cents.
// UnitPrice is captured when the draft is created and never re-read
// from the catalog, so historical totals survive menu price changes.
type Order struct {
	ID         string    `firestore:"-" json:"id"`
	CustomerID string    `firestore:"customerId" json:"customer_id"`
	FoodItemID string    `firestore:"foodItemId" json:"food_item_id"`
	Quantity   int       `firestore:"quantity" json:"quantity"`
	UnitPrice  int64     `firestore:"price" json:"unit_price"`
	TotalPrice int64     `firestore:"totalPrice" json:"total_price"`
	Status     Status    `firestore:"status" json:"status"`
	Comment    string    `firestore:"comment,omitempty" json:"comment,omitempty"`
	Timestamp  time.Time `firestore:"timestamp" json:"timestamp"`
}

// OrderRef identifies an order document for cross-customer batch deletes.
type OrderRef struct {
	CustomerID string
	OrderID    string
}

var (
	ErrNotFound           = errors.New("order not found")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrPermissionDenied   = errors.New("permission denied")
)
