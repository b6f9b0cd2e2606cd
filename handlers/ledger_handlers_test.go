package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/taskaloop-ledger/models"
	"github.com/fadhlanhapp/taskaloop-ledger/repository"
	"github.com/fadhlanhapp/taskaloop-ledger/services"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	repo := repository.NewTransactionRepository(repository.NewMemoryStore())
	ledger := services.NewLedgerService(repo)
	ledgerHandler := NewLedgerHandler(ledger)
	exportHandler := NewExportHandler(services.NewExportService(ledger))

	router := gin.New()
	users := router.Group("/api/v1/users/:userId")
	users.POST("/expenses", ledgerHandler.AddExpense)
	users.POST("/payments", ledgerHandler.AddPayment)
	users.GET("/transactions", ledgerHandler.ListTransactions)
	users.POST("/transactions/:id/confirm", ledgerHandler.ConfirmTransaction)
	users.POST("/transactions/:id/cancel", ledgerHandler.CancelTransaction)
	users.PATCH("/transactions/:id/category", ledgerHandler.SetCategory)
	users.GET("/balances", ledgerHandler.GetBalances)
	users.GET("/settlements", ledgerHandler.GetSettlements)
	users.GET("/categories", ledgerHandler.GetCategories)
	users.GET("/export", exportHandler.ExportLedger)
	return router
}

func perform(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestLedgerHandler_ExpenseThenSettlements(t *testing.T) {
	router := newTestRouter()

	w := perform(t, router, http.MethodPost, "/api/v1/users/alice/expenses", models.AddExpenseRequest{
		From:    models.UserRef{ID: "alice", Name: "Alice"},
		To:      models.UserRef{ID: "bob", Name: "Bob"},
		Amount:  40,
		IsSplit: true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	tx := decode[models.Transaction](t, w)
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, models.StatusCompleted, tx.Status)

	w = perform(t, router, http.MethodGet, "/api/v1/users/alice/settlements", nil)
	require.Equal(t, http.StatusOK, w.Code)

	summary := decode[models.LedgerSummary](t, w)
	require.Len(t, summary.Balances, 2)
	require.Len(t, summary.Recommendations, 1)
	assert.Equal(t, "alice", summary.Recommendations[0].From.ID)
	assert.Equal(t, "bob", summary.Recommendations[0].To.ID)
	assert.Equal(t, 20.0, summary.Recommendations[0].Amount)
}

func TestLedgerHandler_PaymentLifecycle(t *testing.T) {
	router := newTestRouter()

	w := perform(t, router, http.MethodPost, "/api/v1/users/alice/payments", models.AddPaymentRequest{
		From:   models.UserRef{ID: "alice"},
		To:     models.UserRef{ID: "bob"},
		Amount: 15,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tx := decode[models.Transaction](t, w)
	assert.Equal(t, models.StatusPending, tx.Status)

	w = perform(t, router, http.MethodGet, "/api/v1/users/alice/balances", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.UserBalance](t, w))

	w = perform(t, router, http.MethodPost, "/api/v1/users/alice/transactions/"+tx.ID+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusCompleted, decode[models.Transaction](t, w).Status)

	w = perform(t, router, http.MethodPost, "/api/v1/users/alice/transactions/"+tx.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = perform(t, router, http.MethodGet, "/api/v1/users/alice/balances", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.UserBalance](t, w), 2)
}

func TestLedgerHandler_Errors(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{
			name:   "malformed body",
			method: http.MethodPost,
			path:   "/api/v1/users/alice/expenses",
			body:   "not an object",
			status: http.StatusBadRequest,
		},
		{
			name:   "self transfer",
			method: http.MethodPost,
			path:   "/api/v1/users/alice/payments",
			body:   models.AddPaymentRequest{From: models.UserRef{ID: "bob"}, To: models.UserRef{ID: "bob"}, Amount: 3},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown transaction",
			method: http.MethodPost,
			path:   "/api/v1/users/alice/transactions/missing/confirm",
			status: http.StatusNotFound,
		},
		{
			name:   "missing category",
			method: http.MethodPatch,
			path:   "/api/v1/users/alice/transactions/missing/category",
			body:   map[string]string{},
			status: http.StatusBadRequest,
		},
		{
			name:   "bad status filter",
			method: http.MethodGet,
			path:   "/api/v1/users/alice/transactions?status=lost",
			status: http.StatusBadRequest,
		},
		{
			name:   "bad type filter",
			method: http.MethodGet,
			path:   "/api/v1/users/alice/transactions?type=refund",
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			resp := decode[models.ErrorResponse](t, w)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestLedgerHandler_ListAndCategorize(t *testing.T) {
	router := newTestRouter()

	for _, req := range []models.AddExpenseRequest{
		{TripID: "lisbon", From: models.UserRef{ID: "alice"}, To: models.UserRef{ID: "bob"}, Amount: 30},
		{From: models.UserRef{ID: "carol"}, To: models.UserRef{ID: "bob"}, Amount: 12},
	} {
		w := perform(t, router, http.MethodPost, "/api/v1/users/alice/expenses", req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := perform(t, router, http.MethodGet, "/api/v1/users/alice/transactions?tripId=lisbon", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]models.Transaction](t, w)
	require.Len(t, listed, 1)

	w = perform(t, router, http.MethodPatch, "/api/v1/users/alice/transactions/"+listed[0].ID+"/category",
		models.SetCategoryRequest{Category: models.CategoryTransportation})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = perform(t, router, http.MethodGet, "/api/v1/users/alice/transactions?category=transportation&participant=alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Transaction](t, w), 1)

	w = perform(t, router, http.MethodGet, "/api/v1/users/alice/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.CategorySummary{
		{Category: models.CategoryTransportation, Total: 30, Count: 1},
		{Category: models.CategoryOther, Total: 12, Count: 1},
	}, decode[[]models.CategorySummary](t, w))
}

func TestExportHandler_ExportLedger(t *testing.T) {
	router := newTestRouter()

	w := perform(t, router, http.MethodGet, "/api/v1/users/alice/export", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "alice_Ledger_")
	assert.NotZero(t, w.Body.Len())
}

type brokenConnWriter struct {
	header    http.Header
	status    int
	attempted []byte
}

func (w *brokenConnWriter) Header() http.Header { return w.header }

func (w *brokenConnWriter) WriteHeader(status int) { w.status = status }

func (w *brokenConnWriter) Write(p []byte) (int, error) {
	w.attempted = append(w.attempted, p...)
	return 0, errors.New("connection reset by peer")
}

func TestExportHandler_WriteFailureSendsNothingMore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ledger := services.NewLedgerService(repository.NewTransactionRepository(repository.NewMemoryStore()))
	handler := NewExportHandler(services.NewExportService(ledger))

	w := &brokenConnWriter{header: http.Header{}}
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/users/alice/export", nil)
	c.Params = gin.Params{{Key: "userId", Value: "alice"}}

	handler.ExportLedger(c)

	assert.Equal(t, http.StatusOK, w.status)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.header.Get("Content-Type"))
	assert.NotContains(t, string(w.attempted), `"error"`)
	assert.True(t, c.IsAborted())
}
