package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/aquashop/internal/service"
	"github.com/Skotchmaster/aquashop/internal/transport"
	"github.com/Skotchmaster/aquashop/pkg/logging"
)

type AddressHTTP struct {
	Svc *service.AddressService
}

func (h *AddressHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.list")

	caller, err := callerFrom(c)
	if err != nil {
		return fail(l, "list_addresses_error", err)
	}

	list, err := h.Svc.List(ctx, caller.UserID)
	if err != nil {
		return fail(l, "list_addresses_error", err)
	}
	return c.JSON(http.StatusOK, transport.AddressListResponse{Addresses: list})
}

func (h *AddressHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.add")

	caller, err := callerFrom(c)
	if err != nil {
		return fail(l, "add_address_error", err)
	}

	var req transport.AddressRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_address_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	addr, list, err := h.Svc.Add(ctx, caller.UserID, req)
	if err != nil {
		return fail(l, "add_address_error", err)
	}

	l.Info("add_address_success", "address_id", addr.ID, "is_default", addr.IsDefault)
	return c.JSON(http.StatusCreated, transport.AddressResponse{Address: addr, Addresses: list})
}

func (h *AddressHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.update")

	caller, err := callerFrom(c)
	if err != nil {
		return fail(l, "update_address_error", err)
	}

	var req transport.AddressRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_address_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	addr, list, err := h.Svc.Update(ctx, caller.UserID, req)
	if err != nil {
		return fail(l, "update_address_error", err)
	}

	l.Info("update_address_success", "address_id", addr.ID)
	return c.JSON(http.StatusOK, transport.AddressResponse{Address: addr, Addresses: list})
}

func (h *AddressHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.delete")

	caller, err := callerFrom(c)
	if err != nil {
		return fail(l, "delete_address_error", err)
	}

	list, err := h.Svc.Delete(ctx, caller.UserID, c.QueryParam("id"))
	if err != nil {
		return fail(l, "delete_address_error", err)
	}

	l.Info("delete_address_success", "address_id", c.QueryParam("id"))
	return c.JSON(http.StatusOK, transport.AddressDeleteResponse{Success: true, Addresses: list})
}
