package collaborator

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type captured struct {
	method string
	path   string
	query  string
	header http.Header
	body   map[string]any
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.header = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &got.body))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newTestClient(t *testing.T, service, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(ClientConfig{Service: service, BaseURL: baseURL, Timeout: time.Second, AuthToken: "svc-token"}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresAbsoluteURL(t *testing.T) {
	_, err := NewClient(ClientConfig{Service: "inventory", BaseURL: "inventory.local"}, nil)
	assert.ErrorContains(t, err, "must be absolute")
}

func TestInventoryClient_Increment(t *testing.T) {
	srv, got := newServer(t, http.StatusAccepted, "")
	inv := NewInventoryClient(newTestClient(t, "inventory", srv.URL+"/"))

	cmd := returns.StockCommand{
		ReturnID:       uuid.New(),
		ReturnNumber:   "RTN-2026-00007",
		ProductID:      uuid.New(),
		LocationID:     uuid.New(),
		Quantity:       3,
		IdempotencyKey: "abc:RESTOCKED_BRANCH",
	}
	require.NoError(t, inv.Increment(context.Background(), cmd))

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/inventory/increments", got.path)
	assert.Equal(t, "abc:RESTOCKED_BRANCH", got.header.Get(IdempotencyHeader))
	assert.Equal(t, "Bearer svc-token", got.header.Get("Authorization"))
	assert.Equal(t, cmd.ProductID.String(), got.body["product_id"])
	assert.EqualValues(t, 3, got.body["quantity"])
	assert.Equal(t, "RETURN:RTN-2026-00007", got.body["reference"])
}

func TestInventoryClient_Paths(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)
	inv := NewInventoryClient(newTestClient(t, "inventory", srv.URL))
	ctx := context.Background()

	require.NoError(t, inv.WriteOff(ctx, returns.StockCommand{Quantity: 1}))
	assert.Equal(t, "/inventory/write-offs", got.path)

	to := uuid.New()
	require.NoError(t, inv.Transfer(ctx, returns.TransferCommand{ToLocationID: to, Quantity: 1}))
	assert.Equal(t, "/inventory/transfers", got.path)
	assert.Equal(t, to.String(), got.body["to_location_id"])
}

func TestRefundClient_Refund(t *testing.T) {
	srv, got := newServer(t, http.StatusCreated, `{"id":"rf-1"}`)
	refunds := NewRefundClient(newTestClient(t, "refund", srv.URL))

	saleID := uuid.New()
	err := refunds.Refund(context.Background(), returns.RefundCommand{
		SourceID:       saleID,
		Amount:         decimal.RequireFromString("49.90"),
		Method:         returns.RefundMethodCard,
		IdempotencyKey: "k",
	})
	require.NoError(t, err)
	assert.Equal(t, "/refunds", got.path)
	assert.Equal(t, saleID.String(), got.body["sale_id"])
	assert.Equal(t, "49.9", got.body["amount"])
	assert.Equal(t, "CARD", got.body["method"])
}

func TestSupplierAndFulfillment_ReturnExternalID(t *testing.T) {
	srv, got := newServer(t, http.StatusCreated, `{"id":"SR-991"}`)
	c := newTestClient(t, "supplier", srv.URL)

	id, err := NewSupplierReturnClient(c).Create(context.Background(), returns.SupplierReturnCommand{
		SupplierID: uuid.New(), Reason: returns.SupplierReasonDefective, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "SR-991", id)
	assert.Equal(t, "/supplier-returns", got.path)
	assert.Equal(t, "DEFECTIVE", got.body["reason"])

	id, err = NewFulfillmentClient(c).IssueReplacement(context.Background(), returns.ReplacementCommand{Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "SR-991", id)
	assert.Equal(t, "/replacements", got.path)
}

func TestClient_StatusError(t *testing.T) {
	srv, _ := newServer(t, http.StatusConflict, `{"success":false,"error":{"code":"INSUFFICIENT_STOCK","message":"not enough stock"}}`)
	inv := NewInventoryClient(newTestClient(t, "inventory", srv.URL))

	err := inv.WriteOff(context.Background(), returns.StockCommand{})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusConflict, statusErr.StatusCode)
	assert.Equal(t, "not enough stock", statusErr.Message)
	assert.Equal(t, "inventory: HTTP 409: not enough stock", err.Error())
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	inv := NewInventoryClient(newTestClient(t, "inventory", srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := inv.Increment(ctx, returns.StockCommand{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewRefundClient(newTestClient(t, "refund", url)).Refund(context.Background(), returns.RefundCommand{})
	assert.ErrorIs(t, err, ErrCollaboratorUnavailable)
}

func TestCustomerDirectoryClient_Search(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"bare array", `[{"id":"6f1c2f7e-3c1f-4a8e-9d7b-2b9f0c1d2e3f","name":"Ada","phone":"0700"}]`},
		{"data envelope", `{"success":true,"data":[{"id":"6f1c2f7e-3c1f-4a8e-9d7b-2b9f0c1d2e3f","name":"Ada","phone":"0700"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := newServer(t, http.StatusOK, tt.response)
			dir := NewCustomerDirectoryClient(newTestClient(t, "customers", srv.URL))

			customers, err := dir.Search(context.Background(), "0700")
			require.NoError(t, err)
			assert.Equal(t, http.MethodGet, got.method)
			assert.Equal(t, "phone=0700", got.query)
			require.Len(t, customers, 1)
			assert.Equal(t, "Ada", customers[0].Name)
		})
	}
}

func TestLocalCollaborators(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	local := NewLocalCollaborators(zap.New(core))
	ctx := context.Background()

	require.NoError(t, local.Increment(ctx, returns.StockCommand{ReturnNumber: "RTN-2026-00001"}))
	ref, err := local.Create(ctx, returns.SupplierReturnCommand{ReturnNumber: "RTN-2026-00001"})
	require.NoError(t, err)
	assert.Equal(t, "LOCAL-SRET-2026-00001", ref)
	ref, err = local.IssueReplacement(ctx, returns.ReplacementCommand{ReturnNumber: "RTN-2026-00002"})
	require.NoError(t, err)
	assert.Equal(t, "LOCAL-REPL-2026-00002", ref)

	customers, err := local.Search(ctx, "0700")
	require.NoError(t, err)
	assert.Empty(t, customers)
	assert.Equal(t, 3, logs.Len())
}

func TestNewFromConfig(t *testing.T) {
	set, err := NewFromConfig(config.CollaboratorsConfig{
		InventoryURL: "http://inventory:8080",
		Timeout:      time.Second,
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &InventoryClient{}, set.Inventory)
	assert.IsType(t, &LocalCollaborators{}, set.Refunds)
	assert.IsType(t, &LocalCollaborators{}, set.Customers)

	_, err = NewFromConfig(config.CollaboratorsConfig{RefundURL: "/relative"}, nil)
	assert.ErrorContains(t, err, "collaborator refund")
}
