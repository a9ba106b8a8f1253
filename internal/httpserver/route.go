package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/aquashop/pkg/db"
	authmw "github.com/Skotchmaster/aquashop/pkg/middleware/auth"
	"github.com/Skotchmaster/aquashop/pkg/middleware/csrf"
)

type Deps struct {
	DB          *gorm.DB
	JWTSecret   []byte
	CSRFEnabled bool

	Addresses *AddressHTTP
	Orders    *OrderHTTP
	Payments  *PaymentHTTP
	Invoices  *InvoiceHTTP
	Carts     *CartHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := pkgdb.Ping(c.Request().Context(), d.DB); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.NoContent(http.StatusOK)
	})

	auth := authmw.NewAuthenticator(d.JWTSecret)

	api := e.Group("/api", auth.RequireAuth)
	if d.CSRFEnabled {
		api.Use(csrf.Middleware(csrf.DefaultConfig()))
	}

	api.GET("/user-addresses", d.Addresses.List)
	api.POST("/user-addresses", d.Addresses.Add)
	api.PATCH("/user-addresses", d.Addresses.Update)
	api.DELETE("/user-addresses", d.Addresses.Delete)

	api.POST("/orders", d.Orders.Create)
	api.GET("/orders", d.Orders.List)
	api.GET("/orders/search", d.Orders.Search, auth.RequireAdmin)
	api.GET("/orders/:id", d.Orders.Get)
	api.PATCH("/orders/:id", d.Orders.UpdateStatus, auth.RequireAdmin)

	api.POST("/razorpay/create-order", d.Payments.CreateOrder)
	api.POST("/razorpay/verify-payment", d.Payments.VerifyPayment)

	api.POST("/invoices", d.Invoices.Create)
	api.GET("/invoices/:orderId/pdf", d.Invoices.Document)

	api.GET("/cart", d.Carts.Get)
	api.PUT("/cart", d.Carts.Put)
}
