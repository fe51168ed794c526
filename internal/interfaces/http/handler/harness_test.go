package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	appreturns "github.com/erp/returns/internal/application/returns"
	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/infrastructure/collaborator"
	"github.com/erp/returns/internal/infrastructure/persistence"
	"github.com/erp/returns/internal/infrastructure/persistence/models"
	"github.com/erp/returns/internal/infrastructure/storage"
	"github.com/erp/returns/internal/interfaces/http/dto"
	"github.com/erp/returns/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

var errRefundDown = errors.New("ledger unavailable")

// switchableRefunds fails every refund while down is set
type switchableRefunds struct {
	*collaborator.LocalCollaborators
	down bool
}

func (s *switchableRefunds) Refund(ctx context.Context, cmd returns.RefundCommand) error {
	if s.down {
		return errRefundDown
	}
	return s.LocalCollaborators.Refund(ctx, cmd)
}

type fakeSlipRenderer struct{}

func (fakeSlipRenderer) RenderReturnSlip(_ context.Context, r *returns.ReturnRecord) ([]byte, error) {
	return []byte("%PDF-1.4 " + r.ReturnNumber), nil
}

type testAPI struct {
	engine  *gin.Engine
	refunds *switchableRefunds
	actor   uuid.UUID
}

// newTestAPI wires the real services onto an in-memory SQLite database
func newTestAPI(t *testing.T, withSlips bool) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&models.ReturnRecordModel{},
		&models.InspectionModel{},
		&models.AuditEntryModel{},
		&models.ReturnAttachmentModel{},
		&models.ReturnNumberSequenceModel{},
	))

	repo := persistence.NewGormReturnRecordRepository(db)
	stats := persistence.NewSqlxStatsReader(sqlx.NewDb(sqlDB, "sqlite3"), "sqlite")
	local := collaborator.NewLocalCollaborators(nil)
	refunds := &switchableRefunds{LocalCollaborators: local}
	dispatcher := appreturns.NewResolutionDispatcher(appreturns.Collaborators{
		Inventory:   local,
		Refunds:     refunds,
		Suppliers:   local,
		Fulfillment: local,
	}, nil, appreturns.DispatcherConfig{}, nil)
	service := appreturns.NewReturnService(repo, stats, local, nil, dispatcher, nil)

	attachments := appreturns.NewAttachmentService(repo, persistence.NewGormReturnAttachmentRepository(db),
		storage.NewStubEvidenceStorage("http://files.test"), 0, nil)
	var renderer appreturns.SlipRenderer
	if withSlips {
		renderer = fakeSlipRenderer{}
	}

	rh := NewReturnHandler(service)
	ah := NewAttachmentHandler(attachments)
	sh := NewSlipHandler(appreturns.NewSlipService(repo, renderer))

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Actor(middleware.ActorConfig{AllowHeader: true}))
	g := engine.Group("/api/v1/returns")
	g.POST("", rh.Create)
	g.GET("", rh.List)
	g.GET("/stats", rh.Stats)
	g.GET("/analytics", rh.Analytics)
	g.GET("/customers", rh.SearchCustomers)
	g.GET("/rejection-reasons", rh.RejectionReasons)
	g.GET("/number/:returnNumber", rh.GetByNumber)
	g.GET("/:id", rh.GetByID)
	g.GET("/:id/audit", rh.GetHistory)
	g.GET("/:id/suggestion", rh.GetSuggestion)
	g.PATCH("/:id/inspect", rh.Inspect)
	g.PATCH("/:id/approve", rh.Approve)
	g.PATCH("/:id/reject", rh.Reject)
	g.PATCH("/:id/process", rh.Process)
	g.DELETE("/:id", rh.Cancel)
	g.POST("/:id/attachments", ah.RequestUpload)
	g.GET("/:id/attachments", ah.List)
	g.GET("/:id/slip", sh.Render)

	return &testAPI{engine: engine, refunds: refunds, actor: uuid.New()}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return a.doAs(t, a.actor, method, path, body)
}

func (a *testAPI) doAs(t *testing.T, actor uuid.UUID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, jsoniter.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != uuid.Nil {
		req.Header.Set(middleware.ActorHeader, actor.String())
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// envelope decodes the standard response with Data left raw
type envelope struct {
	Success bool                `json:"success"`
	Data    jsoniter.RawMessage `json:"data"`
	Error   *dto.ErrorInfo      `json:"error"`
	Meta    *dto.Meta           `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.Equal(t, w.Code < http.StatusBadRequest, env.Success, "success must mirror the status: %s", w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, jsoniter.Unmarshal(decode(t, w).Data, &out))
	return out
}

func saleReturnBody() map[string]any {
	return map[string]any{
		"source_type":     "SALE",
		"source_id":       uuid.NewString(),
		"return_category": "CUSTOMER_RETURN",
		"return_reason":   "Wrong size",
		"location_id":     uuid.NewString(),
		"product_id":      uuid.NewString(),
		"product_name":    "Trail Shoe",
		"quantity":        1,
		"product_value":   "89.90",
		"customer_name":   "Dana Reyes",
		"customer_phone":  "+15550100",
	}
}

func stockReturnBody(location uuid.UUID) map[string]any {
	return map[string]any{
		"source_type":     "STOCK_CHECK",
		"return_category": "DAMAGED",
		"location_id":     location.String(),
		"product_id":      uuid.NewString(),
		"quantity":        3,
		"product_value":   "12.00",
	}
}

// createApproved drives a record to APPROVED through the API
func (a *testAPI) createApproved(t *testing.T, body map[string]any, resolution string) appreturns.ReturnResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, "/returns", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData[appreturns.ReturnResponse](t, w)

	w = a.do(t, http.MethodPatch, "/returns/"+created.ID.String()+"/inspect", map[string]any{
		"product_condition":   "LIKE_NEW",
		"inspection_notes":    "Box opened, item unused",
		"inspection_complete": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPatch, "/returns/"+created.ID.String()+"/approve", map[string]any{
		"resolution_type": resolution,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeData[appreturns.ReturnResponse](t, w)
}
