package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reservation-service/internal/orders"
	"reservation-service/internal/stores/kafka"
	"reservation-service/pkg/ctxmanage"
	"reservation-service/pkg/logkey"
)

// PendingOrders returns pending reservations grouped per customer, newest
// group first. The PDF/report exports on the dashboard consume this shape.
func (h *Handler) PendingOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	pending, err := h.o.PendingOrders(c.Request.Context())
	if err != nil {
		slog.Error("error fetching pending orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch pending orders"})
		return
	}

	custs, err := h.cust.List(c.Request.Context())
	if err != nil {
		slog.Error("error fetching customers", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch customers"})
		return
	}

	groups := orders.GroupPendingByCustomer(pending, custs)
	c.JSON(http.StatusOK, gin.H{"customers": groups})
}

// StreamPendingOrders pushes live snapshots of the pending order set over SSE
// until the client disconnects.
func (h *Handler) StreamPendingOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	ch, err := h.o.WatchPending(c.Request.Context())
	if err != nil {
		slog.Error("error subscribing to pending orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to subscribe to orders"})
		return
	}

	c.Stream(func(w io.Writer) bool {
		snapshot, ok := <-ch
		if !ok {
			return false
		}
		c.SSEvent("orders", snapshot)
		return true
	})
}

// FulfillCustomerOrders marks every pending order of one customer as
// fulfilled in a single atomic batch.
func (h *Handler) FulfillCustomerOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	customerId := c.Param("customerID")

	pending, err := h.o.CustomerPendingOrders(c.Request.Context(), customerId)
	if err != nil {
		slog.Error("error fetching pending orders", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.CustomerID, customerId))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch pending orders"})
		return
	}

	count, err := h.o.FulfillCustomerOrders(c.Request.Context(), customerId, pending)
	if err != nil {
		slog.Error("error fulfilling orders", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.CustomerID, customerId))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fulfill orders"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusOK, gin.H{"fulfilled": 0, "message": "No pending orders for this customer"})
		return
	}

	if h.k != nil {
		go func() {
			jsonData, err := json.Marshal(kafka.OrderFulfilledEvent{
				CustomerID:  customerId,
				Count:       count,
				FulfilledAt: time.Now().UTC(),
			})
			if err != nil {
				slog.Error("failed to marshal OrderFulfilledEvent", slog.String(logkey.ERROR, err.Error()))
				return
			}
			if err := h.k.ProduceMessage(kafka.TopicOrderFulfilled, []byte(customerId), jsonData); err != nil {
				slog.Error("failed to produce message", slog.String(logkey.ERROR, err.Error()))
			}
		}()
	}

	slog.Info("orders fulfilled", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.CustomerID, customerId), slog.Int("Count", count))
	c.JSON(http.StatusOK, gin.H{"fulfilled": count})
}

// ClearFulfilledOrders deletes every fulfilled order across all customers in
// one atomic batch.
func (h *Handler) ClearFulfilledOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	custs, err := h.cust.List(c.Request.Context())
	if err != nil {
		slog.Error("error fetching customers", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch customers"})
		return
	}

	customerIDs := make([]string, 0, len(custs))
	for _, cust := range custs {
		customerIDs = append(customerIDs, cust.ID)
	}

	deleted, err := h.o.ClearFulfilledOrders(c.Request.Context(), customerIDs)
	if err != nil {
		slog.Error("error clearing fulfilled orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to clear fulfilled orders"})
		return
	}

	slog.Info("fulfilled orders cleared", slog.String(logkey.TraceID, traceId), slog.Int("Deleted", deleted))
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// WeeklyReport aggregates the trailing week's non-draft orders per item name.
func (h *Handler) WeeklyReport(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	all, err := h.o.AllOrders(c.Request.Context())
	if err != nil {
		slog.Error("error fetching orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch orders"})
		return
	}

	items, err := h.cat.List(c.Request.Context(), false)
	if err != nil {
		slog.Error("error fetching food items", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch food items"})
		return
	}

	report := orders.WeeklySalesReport(all, items, time.Now().UTC())
	c.JSON(http.StatusOK, gin.H{"report": report})
}
