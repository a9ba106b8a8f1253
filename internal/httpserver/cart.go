package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/aquashop/internal/service"
	"github.com/Skotchmaster/aquashop/internal/transport"
	"github.com/Skotchmaster/aquashop/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	caller, err := callerFrom(c)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}

	cart, err := h.Svc.GetCart(ctx, caller.UserID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, transport.CartPayload{Items: cart.Items, Wishlist: cart.Wishlist})
}

func (h *CartHTTP) Put(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.put")

	caller, err := callerFrom(c)
	if err != nil {
		return fail(l, "put_cart_error", err)
	}

	var req transport.CartPayload
	if err := c.Bind(&req); err != nil {
		l.Warn("put_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cart, err := h.Svc.PutCart(ctx, caller.UserID, req)
	if err != nil {
		return fail(l, "put_cart_error", err)
	}

	l.Debug("put_cart_success", "items", len(cart.Items), "wishlist", len(cart.Wishlist))
	return c.JSON(http.StatusOK, transport.CartPayload{Items: cart.Items, Wishlist: cart.Wishlist})
}
