package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reservation-service/internal/auth"
	"reservation-service/pkg/ctxmanage"
	"reservation-service/pkg/logkey"
)

type Mid struct {
	a *auth.Conf
}

func NewMid(a *auth.Conf) (*Mid, error) {
	if a == nil {
		return nil, fmt.Errorf("auth conf is nil")
	}
	return &Mid{a: a}, nil
}

// Logger attaches a trace id to every request and logs its outcome.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := c.Request.Header.Get("X-Request-ID")
		if traceId == "" {
			traceId = uuid.NewString()
		}
		c.Set(string(ctxmanage.TraceIDKey), traceId)

		start := time.Now()
		c.Next()

		slog.Info("request completed",
			slog.String(logkey.TraceID, traceId),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status_code", c.Writer.Status()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}
}

// Authentication verifies the Authorization bearer token against the identity
// provider and stores the resulting claims in the request context.
func (m *Mid) Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)

		authHeader := c.Request.Header.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			slog.Error("missing or malformed authorization header", slog.String(logkey.TraceID, traceId))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := m.a.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			slog.Error("token verification failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), auth.ClaimsKey, claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Authorize wraps a handler with a role requirement. Admins pass every check.
func (m *Mid) Authorize(next gin.HandlerFunc, requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)

		claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
		if !ok {
			slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if requiredRole == auth.RoleAdmin && claims.Role != auth.RoleAdmin {
			slog.Error("insufficient role", slog.String(logkey.TraceID, traceId), slog.String("subject", claims.Subject))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		next(c)
	}
}
