package handlers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	consulapi "github.com/hashicorp/consul/api"

	"reservation-service/internal/auth"
	"reservation-service/internal/catalog"
	"reservation-service/internal/customers"
	"reservation-service/internal/media"
	"reservation-service/internal/orders"
	"reservation-service/internal/settings"
	"reservation-service/internal/stores/kafka"
	"reservation-service/middleware"
	"reservation-service/pkg/ctxmanage"
)

type Handler struct {
	o      orders.Conf
	cat    catalog.Conf
	cust   customers.Conf
	set    settings.Conf
	a      *auth.Conf
	m      media.Conf
	k      *kafka.Conf // nil disables event publishing
	client *consulapi.Client
}

func NewHandler(o orders.Conf, cat catalog.Conf, cust customers.Conf, set settings.Conf,
	a *auth.Conf, m media.Conf, k *kafka.Conf, client *consulapi.Client) *Handler {
	return &Handler{
		o:      o,
		cat:    cat,
		cust:   cust,
		set:    set,
		a:      a,
		m:      m,
		k:      k,
		client: client,
	}
}

func API(endpointPrefix string, a *auth.Conf, h *Handler) *gin.Engine {

	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	m, err := middleware.NewMid(a)
	if err != nil {
		panic(err)
	}

	r.Use(middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)

	v1 := r.Group(endpointPrefix)
	{
		v1.GET("/menu", h.ListMenu)
		v1.GET("/settings", h.GetSettings)

		v1.Use(m.Authentication())
		v1.POST("/cart/add-item", m.Authorize(h.AddToCart, auth.RoleUser))
		v1.GET("/cart/items", m.Authorize(h.GetCartItems, auth.RoleUser))
		v1.PATCH("/cart/items/:orderID/quantity", m.Authorize(h.ChangeQuantity, auth.RoleUser))
		v1.DELETE("/cart/items/:orderID", m.Authorize(h.RemoveCartItem, auth.RoleUser))
		v1.DELETE("/cart", m.Authorize(h.ClearCart, auth.RoleUser))
		v1.POST("/cart/confirm", m.Authorize(h.ConfirmOrder, auth.RoleUser))
		v1.GET("/account", m.Authorize(h.GetAccount, auth.RoleUser))
		v1.DELETE("/account", m.Authorize(h.DeleteAccount, auth.RoleUser))
	}

	admin := r.Group(endpointPrefix + "/admin")
	{
		admin.Use(m.Authentication())
		admin.POST("/menu", m.Authorize(h.CreateFoodItem, auth.RoleAdmin))
		admin.PUT("/menu/:id", m.Authorize(h.UpdateFoodItem, auth.RoleAdmin))
		admin.DELETE("/menu/:id", m.Authorize(h.DeleteFoodItem, auth.RoleAdmin))
		admin.PATCH("/menu/:id/reservable", m.Authorize(h.ToggleReservable, auth.RoleAdmin))

		admin.GET("/orders/pending", m.Authorize(h.PendingOrders, auth.RoleAdmin))
		admin.GET("/orders/stream", m.Authorize(h.StreamPendingOrders, auth.RoleAdmin))
		admin.POST("/orders/fulfill/:customerID", m.Authorize(h.FulfillCustomerOrders, auth.RoleAdmin))
		admin.DELETE("/orders/fulfilled", m.Authorize(h.ClearFulfilledOrders, auth.RoleAdmin))
		admin.GET("/report/weekly", m.Authorize(h.WeeklyReport, auth.RoleAdmin))

		admin.PATCH("/settings/reservations", m.Authorize(h.SetReservationsOpen, auth.RoleAdmin))
		admin.POST("/settings/logo", m.Authorize(h.UploadLogo, auth.RoleAdmin))
	}

	return r
}

func healthCheck(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	fmt.Println("healthCheck handler ", traceId)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
