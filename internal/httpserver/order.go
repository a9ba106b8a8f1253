package httpserver

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/aquashop/internal/service"
	"github.com/Skotchmaster/aquashop/internal/transport"
	"github.com/Skotchmaster/aquashop/pkg/logging"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	caller, err := callerFrom(c)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	}

	order, created, err := h.Svc.Create(ctx, caller, req)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	if !created {
		l.Info("create_order_replayed", "order_id", order.ID)
		return c.JSON(http.StatusOK, transport.OrderResponse{Order: order})
	}
	l.Info("create_order_success", "order_id", order.ID, "total", order.TotalAmount.StringFixed(2))
	return c.JSON(http.StatusCreated, transport.OrderResponse{Order: order})
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	caller, err := callerFrom(c)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}

	// without page or size the caller gets every order
	var from, size int
	if c.QueryParam("page") != "" || c.QueryParam("size") != "" {
		from, size = pageParams(c)
	}
	orders, err := h.Svc.List(ctx, caller, size, from)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.OrderListResponse{Orders: orders})
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	caller, err := callerFrom(c)
	if err != nil {
		return fail(l, "get_order_error", err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_order_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := h.Svc.Get(ctx, caller, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.OrderResponse{Order: order})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("update_order_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.UpdateStatus(ctx, id, req.OrderStatus)
	if err != nil {
		return fail(l, "update_order_error", err)
	}

	l.Info("update_order_success", "order_id", order.ID, "order_status", order.OrderStatus)
	return c.JSON(http.StatusOK, transport.OrderResponse{Order: order})
}

func (h *OrderHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.search")

	from, size := pageParams(c)
	total, orders, err := h.Svc.SearchOrders(ctx, c.QueryParam("q"), from, size)
	if err != nil {
		return fail(l, "search_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.OrderSearchResponse{Total: total, Orders: orders})
}
