package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"reservation-service/internal/auth"
	"reservation-service/internal/customers"
	"reservation-service/pkg/ctxmanage"
	"reservation-service/pkg/logkey"
)

func (h *Handler) GetAccount(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": http.StatusText(http.StatusUnauthorized)})
		return
	}

	cust, err := h.cust.Get(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, customers.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Customer profile not found"})
			return
		}
		slog.Error("error fetching customer", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.CustomerID, claims.Subject))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": cust})
}

// DeleteAccount removes the customer's orders, then their profile document,
// then the identity record. A failure after the data is gone is logged loudly
// so the orphaned identity can be cleaned up by hand.
func (h *Handler) DeleteAccount(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": http.StatusText(http.StatusUnauthorized)})
		return
	}
	customerId := claims.Subject

	if err := h.o.DeleteCustomerOrders(c.Request.Context(), customerId); err != nil {
		slog.Error("error deleting customer orders", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.CustomerID, customerId))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete account"})
		return
	}

	if err := h.cust.Delete(c.Request.Context(), customerId); err != nil && !errors.Is(err, customers.ErrNotFound) {
		slog.Error("error deleting customer profile after orders were removed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.CustomerID, customerId))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete account"})
		return
	}

	if err := h.a.DeleteUser(c.Request.Context(), customerId); err != nil {
		// Data is already gone; the auth record is orphaned until an
		// operator removes it.
		slog.Error("customer data deleted but identity deletion failed, manual cleanup required",
			slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()),
			slog.String(logkey.CustomerID, customerId))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Account data deleted but sign-in removal failed"})
		return
	}

	slog.Info("account deleted", slog.String(logkey.TraceID, traceId), slog.String(logkey.CustomerID, customerId))
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
