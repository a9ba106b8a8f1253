// Package gatewaytest provides an in-memory payment provider.
package gatewaytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/Skotchmaster/aquashop/internal/gateway"
)

// Provider creates orders in memory and signs payments with Secret the way
// the real provider does.
type Provider struct {
	Secret string
	Err    error

	mu       sync.Mutex
	seq      int
	Requests []gateway.OrderRequest
}

func New(secret string) *Provider {
	return &Provider{Secret: secret}
}

func (p *Provider) CreateOrder(_ context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Requests = append(p.Requests, req)
	if p.Err != nil {
		return nil, p.Err
	}
	p.seq++
	return &gateway.Order{
		ID:       fmt.Sprintf("order_test%06d", p.seq),
		Entity:   "order",
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
		Notes:    req.Notes,
	}, nil
}

// Pay returns the payment id and signature the checkout widget reports after
// a successful payment of gatewayOrderID.
func (p *Provider) Pay(gatewayOrderID string) (paymentID, signature string) {
	p.mu.Lock()
	p.seq++
	paymentID = fmt.Sprintf("pay_test%06d", p.seq)
	p.mu.Unlock()
	return paymentID, gateway.Sign(p.Secret, gatewayOrderID, paymentID)
}

func (p *Provider) LastRequest() (gateway.OrderRequest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Requests) == 0 {
		return gateway.OrderRequest{}, false
	}
	return p.Requests[len(p.Requests)-1], true
}
