package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reservation-service/internal/auth"
	"reservation-service/internal/catalog"
	"reservation-service/internal/orders"
	"reservation-service/internal/stores/kafka"
	"reservation-service/pkg/ctxmanage"
	"reservation-service/pkg/logkey"
)

// AddToCart upserts a draft order: an existing draft for the same item is
// incremented, otherwise a new one is created with the item's current price.
func (h *Handler) AddToCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	customerId := claims.Subject

	var request struct {
		FoodItemID string `json:"food_item_id"`
		Quantity   int    `json:"quantity"`
		Comment    string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if request.FoodItemID == "" || request.Quantity <= 0 {
		slog.Error("invalid food item ID or quantity", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Food item ID and quantity must be valid"})
		return
	}

	// The storefront hides ordering while reservations are closed; the API
	// re-checks here because it cannot rely on a hidden button.
	appSettings, err := h.set.Get(c.Request.Context())
	if err != nil {
		slog.Error("error reading app settings", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to read settings"})
		return
	}
	if !appSettings.Open() {
		slog.Error("reservations closed", slog.String(logkey.TraceID, traceId), slog.String(logkey.CustomerID, customerId))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Reservations are closed"})
		return
	}

	item, err := h.cat.Get(c.Request.Context(), request.FoodItemID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Food item not found"})
			return
		}
		slog.Error("error fetching food item", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch food item"})
		return
	}
	if !item.Reservable {
		slog.Error("food item not reservable", slog.String(logkey.TraceID, traceId), slog.String(logkey.FoodItemID, item.ID))
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "Item is not available for reservation"})
		return
	}

	order, err := h.o.AddToCart(c.Request.Context(), customerId, item.ID, item.Price, request.Quantity, request.Comment)
	if err != nil {
		slog.Error("error adding item to cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.FoodItemID, item.ID), slog.Int("Quantity", request.Quantity))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to add item to cart"})
		return
	}

	slog.Info("item added to cart", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.FoodItemID, item.ID), slog.Int("Quantity", order.Quantity), slog.String(logkey.CustomerID, customerId))

	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) GetCartItems(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, err := h.o.CartItems(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error fetching cart items", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch cart items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ChangeQuantity applies the stepper delta. A result below one removes the
// order entirely.
func (h *Handler) ChangeQuantity(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderId := c.Param("orderID")

	var request struct {
		CurrentQuantity int   `json:"current_quantity"`
		UnitPrice       int64 `json:"unit_price"`
		Delta           int   `json:"delta"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if request.CurrentQuantity < 1 || request.Delta == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Quantity and delta must be valid"})
		return
	}

	order, err := h.o.ChangeQuantity(c.Request.Context(), claims.Subject, orderId, request.CurrentQuantity, request.UnitPrice, request.Delta)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		slog.Error("error updating quantity", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.OrderID, orderId))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to update item quantity"})
		return
	}

	if order == nil {
		c.JSON(http.StatusOK, gin.H{"removed": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderId := c.Param("orderID")

	if err := h.o.RemoveOrder(c.Request.Context(), claims.Subject, orderId); err != nil {
		slog.Error("error removing cart item", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.OrderID, orderId))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to remove the item"})
		return
	}

	slog.Info("cart item removed", slog.String(logkey.TraceID, traceId), slog.String(logkey.OrderID, orderId))
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// ClearCart re-queries the draft set before deleting so drafts added after
// any stale client snapshot are cleared too.
func (h *Handler) ClearCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deleted, err := h.o.ClearDraftCart(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error clearing cart", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to clear the cart"})
		return
	}

	slog.Info("cart cleared", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.CustomerID, claims.Subject), slog.Int("Deleted", deleted))
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ConfirmOrder transitions the submitted draft orders to pending in one
// atomic batch and publishes an order-confirmed event.
func (h *Handler) ConfirmOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	customerId := claims.Subject

	var request struct {
		OrderIDs []string `json:"order_ids"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if len(request.OrderIDs) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "No orders to confirm"})
		return
	}

	appSettings, err := h.set.Get(c.Request.Context())
	if err != nil {
		slog.Error("error reading app settings", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to read settings"})
		return
	}
	if !appSettings.Open() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Reservations are closed"})
		return
	}

	if err := h.o.ConfirmOrder(c.Request.Context(), customerId, request.OrderIDs); err != nil {
		slog.Error("error confirming order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.CustomerID, customerId))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to confirm the order"})
		return
	}

	if h.k != nil {
		go func(orderIDs []string) {
			jsonData, err := json.Marshal(kafka.OrderConfirmedEvent{
				CustomerID:  customerId,
				OrderIDs:    orderIDs,
				ConfirmedAt: time.Now().UTC(),
			})
			if err != nil {
				slog.Error("failed to marshal OrderConfirmedEvent", slog.String(logkey.ERROR, err.Error()))
				return
			}
			if err := h.k.ProduceMessage(kafka.TopicOrderConfirmed, []byte(customerId), jsonData); err != nil {
				slog.Error("failed to produce message", slog.String(logkey.ERROR, err.Error()))
			}
		}(request.OrderIDs)
	}

	slog.Info("order confirmed", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.CustomerID, customerId), slog.Int("Orders", len(request.OrderIDs)))
	c.JSON(http.StatusOK, gin.H{"message": "Reservation sent for fulfillment"})
}
