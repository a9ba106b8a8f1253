// Package apptest builds a fully wired server on an in-memory database for
// handler and end-to-end tests.
package apptest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/aquashop/internal/app"
	"github.com/Skotchmaster/aquashop/internal/config"
	"github.com/Skotchmaster/aquashop/internal/dbtest"
	"github.com/Skotchmaster/aquashop/internal/events"
	"github.com/Skotchmaster/aquashop/internal/gateway/gatewaytest"
	"github.com/Skotchmaster/aquashop/internal/models"
	"github.com/Skotchmaster/aquashop/pkg/logging"
	"github.com/Skotchmaster/aquashop/pkg/tokens"
)

const (
	JWTSecret     = "apptest-jwt-secret"
	GatewaySecret = "apptest-gateway-secret"
)

type Env struct {
	DB       *gorm.DB
	Echo     *echo.Echo
	Config   *config.Config
	Provider *gatewaytest.Provider
	Events   *events.Recorder
	Logs     *bytes.Buffer
}

func Config() *config.Config {
	return &config.Config{
		ServerPort:            "0",
		JWTSecret:             []byte(JWTSecret),
		LogLevel:              "debug",
		RazorpayKeyID:         "rzp_test_key",
		RazorpayKeySecret:     GatewaySecret,
		Currency:              "INR",
		FreeShippingThreshold: decimal.NewFromInt(2000),
		ShippingFee:           decimal.NewFromInt(99),
		TotalTolerance:        decimal.RequireFromString("0.01"),
		TaxRate:               decimal.Zero,
		ESOrderIndex:          "orders",
		StoreName:             "Aquashop",
	}
}

// New wires the server. mutate, when given, adjusts the config first.
func New(t testing.TB, mutate ...func(*config.Config)) *Env {
	t.Helper()

	cfg := Config()
	for _, m := range mutate {
		m(cfg)
	}

	env := &Env{
		DB:       dbtest.SQLite(t),
		Config:   cfg,
		Provider: gatewaytest.New(GatewaySecret),
		Events:   &events.Recorder{},
		Logs:     &bytes.Buffer{},
	}

	e, err := app.NewEcho(app.Options{
		Config:  cfg,
		DB:      env.DB,
		Logger:  logging.NewWithWriter(env.Logs, cfg.LogLevel),
		Gateway: env.Provider,
		Events:  env.Events,
	})
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	env.Echo = e
	return env
}

// Token signs an access token the way the identity provider would.
func (env *Env) Token(t testing.TB, userID uuid.UUID, role string) string {
	t.Helper()
	tok, err := tokens.SignAccessToken(env.Config.JWTSecret, userID.String(), role, "buyer@example.in", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func (env *Env) Product(t testing.TB, name, price, mrp string) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: decimal.RequireFromString(price), Active: true}
	if mrp != "" {
		m := decimal.RequireFromString(mrp)
		p.Mrp = &m
	}
	if err := env.DB.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

// Do sends a JSON request through the router. body may be nil, a string or
// any value that marshals to JSON.
func (env *Env) Do(t testing.TB, method, path string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	env.Echo.ServeHTTP(rec, req)
	return rec
}

// Server starts a real listener for client packages.
func (env *Env) Server(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(env.Echo)
	t.Cleanup(srv.Close)
	return srv
}
