// Package apiclient is a typed client for the storefront API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/aquashop/internal/gateway"
	"github.com/Skotchmaster/aquashop/internal/models"
	"github.com/Skotchmaster/aquashop/internal/transport"
)

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   accessToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Authenticated reports whether the client carries an access token.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// WithHTTPClient replaces the underlying transport client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, headers map[string]string) (int, error) {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &Error{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// errorMessage reads either {"error": ...} or echo's {"message": ...}.
func errorMessage(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 64<<10))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

func (c *Client) ListAddresses(ctx context.Context) ([]models.Address, error) {
	var out transport.AddressListResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/user-addresses", nil, &out, nil); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

func (c *Client) AddAddress(ctx context.Context, req transport.AddressRequest) (*transport.AddressResponse, error) {
	var out transport.AddressResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/user-addresses", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOrder places an order. created is false when the server replayed an
// order already stored under the same idempotency key.
func (c *Client) CreateOrder(ctx context.Context, req transport.CreateOrderRequest, idempotencyKey string) (order *models.Order, created bool, err error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	var out transport.OrderResponse
	status, err := c.do(ctx, http.MethodPost, "/api/orders", req, &out, headers)
	if err != nil {
		return nil, false, err
	}
	return out.Order, status == http.StatusCreated, nil
}

func (c *Client) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var out transport.OrderResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/orders/"+id.String(), nil, &out, nil); err != nil {
		return nil, err
	}
	return out.Order, nil
}

func (c *Client) CreateGatewayOrder(ctx context.Context, req transport.GatewayOrderRequest) (*gateway.Order, error) {
	var out transport.GatewayOrderResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/razorpay/create-order", req, &out, nil); err != nil {
		return nil, err
	}
	if out.Order == nil {
		return nil, errors.New("create gateway order: empty response")
	}
	return out.Order, nil
}

func (c *Client) VerifyPayment(ctx context.Context, req transport.VerifyPaymentRequest) (*models.Order, error) {
	var out transport.VerifyPaymentResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/razorpay/verify-payment", req, &out, nil); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, errors.New("verify payment: not successful")
	}
	return out.Order, nil
}

func (c *Client) CreateInvoice(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	var out transport.InvoiceResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/invoices", transport.InvoiceRequest{OrderID: orderID.String()}, &out, nil); err != nil {
		return nil, err
	}
	return out.Invoice, nil
}

func (c *Client) GetCart(ctx context.Context) (*transport.CartPayload, error) {
	var out transport.CartPayload
	if _, err := c.do(ctx, http.MethodGet, "/api/cart", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PutCart(ctx context.Context, cart transport.CartPayload) (*transport.CartPayload, error) {
	var out transport.CartPayload
	if _, err := c.do(ctx, http.MethodPut, "/api/cart", cart, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}
