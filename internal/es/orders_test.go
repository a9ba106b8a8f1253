package es

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/aquashop/internal/models"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
	search   string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, f.search)
	case strings.Contains(r.URL.Path, "/_doc/"):
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	default:
		_, _ = io.WriteString(w, `{"version":{"number":"9.0.0"}}`)
	}
}

func newTestIndex(t *testing.T, f *fakeES) *OrderIndex {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return &OrderIndex{Client: client, Index: "orders"}
}

func TestOrderIndex_IndexOrder(t *testing.T) {
	f := &fakeES{}
	idx := newTestIndex(t, f)

	order := &models.Order{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		CustomerName: "Asha Rao",
		ShippingCity: "Pune",
		Products: []models.LineItem{
			{ID: uuid.New(), Name: "Betta Fish", Price: decimal.NewFromInt(300), Quantity: 2},
		},
		TotalAmount: decimal.NewFromInt(699),
		OrderStatus: models.OrderStatusPlaced,
	}
	require.NoError(t, idx.IndexOrder(context.Background(), order))

	require.Len(t, f.requests, 1)
	assert.Equal(t, "PUT /orders/_doc/"+order.ID.String(), f.requests[0])

	var doc OrderDoc
	require.NoError(t, json.Unmarshal([]byte(f.bodies[0]), &doc))
	assert.Equal(t, "Asha Rao", doc.CustomerName)
	assert.Equal(t, []string{"Betta Fish"}, doc.ProductNames)
	assert.Equal(t, "699.00", doc.TotalAmount)
}

func TestOrderIndex_SearchOrders(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	f := &fakeES{search: `{"hits":{"total":{"value":2},"hits":[` +
		`{"_source":{"id":"` + id1.String() + `"}},` +
		`{"_source":{"id":"` + id2.String() + `"}},` +
		`{"_source":{"id":"garbage"}}]}}`}
	idx := newTestIndex(t, f)

	total, ids, err := idx.SearchOrders(context.Background(), "asha", 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []uuid.UUID{id1, id2}, ids)

	require.Len(t, f.requests, 1)
	assert.Equal(t, "POST /orders/_search", f.requests[0])
	assert.Contains(t, f.bodies[0], `"multi_match"`)
	assert.Contains(t, f.bodies[0], `"asha"`)
}
