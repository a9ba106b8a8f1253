package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/aquashop/internal/service"
	"github.com/Skotchmaster/aquashop/internal/transport"
	"github.com/Skotchmaster/aquashop/pkg/logging"
)

type PaymentHTTP struct {
	Svc *service.PaymentService
}

func (h *PaymentHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.create_order")

	caller, err := callerFrom(c)
	if err != nil {
		return fail(l, "create_gateway_order_error", err)
	}

	var req transport.GatewayOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_gateway_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	gwOrder, err := h.Svc.CreateGatewayOrder(ctx, caller, req)
	if err != nil {
		return fail(l, "create_gateway_order_error", err)
	}

	l.Info("create_gateway_order_success", "gateway_order_id", gwOrder.ID, "amount", gwOrder.Amount)
	return c.JSON(http.StatusOK, transport.GatewayOrderResponse{Order: gwOrder})
}

// VerifyPayment answers client errors with an {"error": ...} body so the
// storefront can show the reason next to the payment step.
func (h *PaymentHTTP) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.verify")

	caller, err := callerFrom(c)
	if err != nil {
		return fail(l, "verify_payment_error", err)
	}

	var req transport.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("verify_payment_error", "status", 400, "reason", "invalid body", "error", err)
		return c.JSON(http.StatusBadRequest, transport.ErrorResponse{Error: "invalid body"})
	}

	order, err := h.Svc.VerifyPayment(ctx, caller, req)
	if err != nil {
		status, reason := statusOf(err)
		if status >= http.StatusInternalServerError {
			return fail(l, "verify_payment_error", err)
		}
		l.Warn("verify_payment_error", "status", status, "reason", reason, "order_id", req.OrderID, "error", err)
		return c.JSON(status, transport.ErrorResponse{Error: reason})
	}

	l.Info("verify_payment_success", "order_id", order.ID, "payment_id", req.RazorpayPaymentID)
	return c.JSON(http.StatusOK, transport.VerifyPaymentResponse{Success: true, Order: order})
}
