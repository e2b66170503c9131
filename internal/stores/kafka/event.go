package kafka

import "time"

const (
	TopicOrderConfirmed = `reservation-service.order-confirmed`
	TopicOrderFulfilled = `reservation-service.order-fulfilled`
)

// OrderConfirmedEvent is published when a customer submits their draft cart.
type OrderConfirmedEvent struct {
	CustomerID  string    `json:"customer_id"`
	OrderIDs    []string  `json:"order_ids"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// OrderFulfilledEvent is published when the admin fulfills a customer's
// pending reservations.
type OrderFulfilledEvent struct {
	CustomerID  string    `json:"customer_id"`
	Count       int       `json:"count"`
	FulfilledAt time.Time `json:"fulfilled_at"`
}
