// Package app wires repositories, services and handlers into an echo server.
package app

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/aquashop/internal/config"
	"github.com/Skotchmaster/aquashop/internal/es"
	"github.com/Skotchmaster/aquashop/internal/events"
	"github.com/Skotchmaster/aquashop/internal/gateway"
	"github.com/Skotchmaster/aquashop/internal/httpserver"
	"github.com/Skotchmaster/aquashop/internal/invoice"
	"github.com/Skotchmaster/aquashop/internal/repo"
	"github.com/Skotchmaster/aquashop/internal/service"
	"github.com/Skotchmaster/aquashop/internal/shipping"
	loggingmw "github.com/Skotchmaster/aquashop/pkg/middleware/logging"
)

type Options struct {
	Config  *config.Config
	DB      *gorm.DB
	Logger  *slog.Logger
	Gateway gateway.OrderCreator
	Events  events.Publisher
	// OrderIndex is optional; without it search answers 503.
	OrderIndex *es.OrderIndex
}

func NewEcho(o Options) (*echo.Echo, error) {
	cfg := o.Config
	r := repo.New(o.DB)

	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pub := o.Events
	if pub == nil {
		pub = events.Nop{}
	}

	var (
		indexer  service.OrderIndexer
		searcher service.OrderSearcher
	)
	if o.OrderIndex != nil {
		indexer, searcher = o.OrderIndex, o.OrderIndex
	}

	renderer, err := invoice.NewRenderer(invoice.Store{
		Name:    cfg.StoreName,
		Address: cfg.StoreAddress,
		GSTIN:   cfg.StoreGSTIN,
	})
	if err != nil {
		return nil, err
	}

	orders := &service.OrderService{
		Repo:      r,
		Shipping:  shipping.New(cfg.FreeShippingThreshold, cfg.ShippingFee),
		Tolerance: cfg.TotalTolerance,
		Events:    pub,
		Index:     indexer,
		Search:    searcher,
	}
	payments := &service.PaymentService{
		Repo:      r,
		Gateway:   o.Gateway,
		Verifier:  gateway.Verifier{Secret: cfg.RazorpayKeySecret},
		Currency:  cfg.Currency,
		Tolerance: cfg.TotalTolerance,
		Events:    pub,
		Index:     indexer,
	}
	invoices := &service.InvoiceService{
		Repo:     r,
		Renderer: renderer,
		TaxRate:  cfg.TaxRate,
		Events:   pub,
	}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		DB:          o.DB,
		JWTSecret:   cfg.JWTSecret,
		CSRFEnabled: cfg.CSRFEnabled,
		Addresses:   &httpserver.AddressHTTP{Svc: service.NewAddressService(r)},
		Orders:      &httpserver.OrderHTTP{Svc: orders},
		Payments:    &httpserver.PaymentHTTP{Svc: payments},
		Invoices:    &httpserver.InvoiceHTTP{Svc: invoices},
		Carts:       &httpserver.CartHTTP{Svc: &service.CartService{Repo: r}},
	})
	return e, nil
}
