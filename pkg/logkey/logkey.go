package logkey

// Keys used for structured logging across the service.
const (
	TraceID    = "trace_id"
	ERROR      = "error"
	CustomerID = "customer_id"
	OrderID    = "order_id"
	FoodItemID = "food_item_id"
)
