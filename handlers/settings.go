package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"reservation-service/pkg/ctxmanage"
	"reservation-service/pkg/logkey"
)

// GetSettings is public. The frontend uses it to decide whether to show the
// ordering flow and which logo to render.
func (h *Handler) GetSettings(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	s, err := h.set.Get(c.Request.Context())
	if err != nil {
		slog.Error("error fetching settings", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations_open": s.Open(),
		"logo_url":          s.LogoURL,
	})
}

func (h *Handler) SetReservationsOpen(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var req struct {
		Open *bool `json:"open" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "open field is required"})
		return
	}

	if err := h.set.SetReservationsOpen(c.Request.Context(), *req.Open); err != nil {
		slog.Error("error updating settings", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to update settings"})
		return
	}

	slog.Info("reservations toggled", slog.String(logkey.TraceID, traceId), slog.Bool("Open", *req.Open))
	c.JSON(http.StatusOK, gin.H{"reservations_open": *req.Open})
}

// UploadLogo accepts a multipart image, uploads it to the media host and
// stores the resulting URL in the app settings.
func (h *Handler) UploadLogo(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	if c.Request.ContentLength > 5*1024*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId), slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request body too large."})
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		slog.Error("missing logo file", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "logo file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		slog.Error("error opening logo file", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "could not read logo file"})
		return
	}
	defer file.Close()

	logoURL, err := h.m.Upload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		slog.Error("error uploading logo", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Failed to upload logo"})
		return
	}

	if err := h.set.SetLogoURL(c.Request.Context(), logoURL); err != nil {
		slog.Error("error saving logo url", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to save logo"})
		return
	}

	slog.Info("logo updated", slog.String(logkey.TraceID, traceId))
	c.JSON(http.StatusOK, gin.H{"logo_url": logoURL})
}
