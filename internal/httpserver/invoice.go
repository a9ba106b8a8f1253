package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/aquashop/internal/service"
	"github.com/Skotchmaster/aquashop/internal/transport"
	"github.com/Skotchmaster/aquashop/pkg/logging"
)

type InvoiceHTTP struct {
	Svc *service.InvoiceService
}

func (h *InvoiceHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "invoice.create")

	caller, err := callerFrom(c)
	if err != nil {
		return fail(l, "create_invoice_error", err)
	}

	var req transport.InvoiceRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_invoice_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	inv, created, err := h.Svc.GetOrCreate(ctx, caller, req.OrderID)
	if err != nil {
		return fail(l, "create_invoice_error", err)
	}

	l.Info("create_invoice_success", "order_id", inv.OrderID, "invoice_number", inv.InvoiceNumber, "created", created)
	return c.JSON(http.StatusOK, transport.InvoiceResponse{Invoice: inv})
}

func (h *InvoiceHTTP) Document(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "invoice.document")

	caller, err := callerFrom(c)
	if err != nil {
		return fail(l, "invoice_document_error", err)
	}

	body, err := h.Svc.Document(ctx, caller, c.Param("orderId"))
	if err != nil {
		return fail(l, "invoice_document_error", err)
	}
	return c.HTMLBlob(http.StatusOK, body)
}
