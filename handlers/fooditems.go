package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"reservation-service/internal/catalog"
	"reservation-service/pkg/ctxmanage"
	"reservation-service/pkg/logkey"
)

// ListMenu serves the customer-facing menu. Non-reservable items are hidden
// unless the caller asks for everything with ?all=true (dashboard view).
func (h *Handler) ListMenu(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	reservableOnly := c.Query("all") != "true"
	items, err := h.cat.List(c.Request.Context(), reservableOnly)
	if err != nil {
		slog.Error("error fetching menu", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch menu"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateFoodItem accepts a multipart form with the item fields and an image,
// uploads the image to the media host, and stores the new menu entry.
func (h *Handler) CreateFoodItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	// Images come through this endpoint; keep the body within reason.
	if c.Request.ContentLength > 5*1024*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId), slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request body too large."})
		return
	}

	price, err := strconv.ParseInt(c.PostForm("price"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "price must be an integer amount in cents"})
		return
	}
	newItem := catalog.NewFoodItem{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		slog.Error("missing image file", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		slog.Error("error opening image file", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "could not read image file"})
		return
	}
	defer file.Close()

	imageURL, err := h.m.Upload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		slog.Error("error uploading image", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Failed to upload image"})
		return
	}
	newItem.ImageURL = imageURL

	validate := validator.New()
	if err := validate.Struct(newItem); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			for _, vErr := range vErrs {
				switch vErr.Tag() {
				case "required":
					slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
					c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": vErr.Field() + " value missing"})
					return
				case "min":
					slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
					c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": vErr.Field() + " value is less than " + vErr.Param()})
					return
				}
			}
		}
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
		return
	}

	inserted, err := h.cat.Insert(c.Request.Context(), newItem)
	if err != nil {
		slog.Error("error inserting food item", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Food item creation failed"})
		return
	}

	slog.Info("food item created", slog.String(logkey.TraceID, traceId), slog.String(logkey.FoodItemID, inserted.ID))
	c.JSON(http.StatusOK, gin.H{"item": inserted})
}

func (h *Handler) UpdateFoodItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	itemId := c.Param("id")

	var upd catalog.UpdateFoodItem
	if err := c.ShouldBindJSON(&upd); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
		return
	}

	validate := validator.New()
	if err := validate.Struct(upd); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
		return
	}

	if err := h.cat.Update(c.Request.Context(), itemId, upd); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Food item not found"})
			return
		}
		slog.Error("error updating food item", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.FoodItemID, itemId))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to update food item"})
		return
	}

	slog.Info("food item updated", slog.String(logkey.TraceID, traceId), slog.String(logkey.FoodItemID, itemId))
	c.JSON(http.StatusOK, gin.H{"message": "Food item updated"})
}

func (h *Handler) DeleteFoodItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	itemId := c.Param("id")

	if err := h.cat.Delete(c.Request.Context(), itemId); err != nil {
		slog.Error("error deleting food item", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.FoodItemID, itemId))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete food item"})
		return
	}

	slog.Info("food item deleted", slog.String(logkey.TraceID, traceId), slog.String(logkey.FoodItemID, itemId))
	c.JSON(http.StatusOK, gin.H{"message": "Food item deleted"})
}

// ToggleReservable flips whether customers may reserve the item.
func (h *Handler) ToggleReservable(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	itemId := c.Param("id")

	reservable, err := h.cat.ToggleReservable(c.Request.Context(), itemId)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Food item not found"})
			return
		}
		slog.Error("error toggling food item", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()), slog.String(logkey.FoodItemID, itemId))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to update food item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reservable": reservable})
}
