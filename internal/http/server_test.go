package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insights/internal/core"
	applog "insights/internal/log"
	"insights/internal/personalization"
	"insights/internal/store/memory"
)

func testTransactions() []core.Transaction {
	return []core.Transaction{
		{ID: 1, Label: "Salary", Value: decimal.NewFromInt(3000), Type: core.Income, Category: "Salary", Date: "01/03/2025"},
		{ID: 2, Label: "Market", Value: decimal.NewFromInt(250), Type: core.Expense, Category: "Food", Date: "02/03/2025"},
		{ID: 3, Label: "Dinner", Value: decimal.NewFromInt(120), Type: core.Expense, Category: "Food", Date: "05/03/2025"},
		{ID: 4, Label: "Bus", Value: decimal.NewFromInt(40), Type: core.Expense, Category: "Transport", Date: "bad"},
	}
}

type failingSource struct{}

func (failingSource) ListTransactions(context.Context) ([]core.Transaction, error) {
	return nil, errors.New("backend down")
}

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()

	st := memory.New(testTransactions())
	engine := personalization.NewEngine(st, st, nil)
	require.NoError(t, engine.Load(context.Background()))

	logger := applog.New(applog.Config{Level: applog.DefaultConfig().Level, Output: &strings.Builder{}})
	srv := NewServer(":0", Options{
		Engine:            engine,
		Transactions:      st,
		Logger:            logger,
		CacheSize:         4,
		CacheTTL:          time.Minute,
		RequestsPerMinute: 1000,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode[map[string]string](t, rec)["status"])
}

func TestReadyReportsUnavailableSource(t *testing.T) {
	st := memory.New(nil)
	engine := personalization.NewEngine(st, st, nil)
	srv := NewServer(":0", Options{Engine: engine, Transactions: failingSource{}})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rec := do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDashboard(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }

	rec := do(t, srv, http.MethodGet, "/api/dashboard?window=7d", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	var view struct {
		Window   string            `json:"window"`
		Series   []json.RawMessage `json:"series"`
		Windowed []json.RawMessage `json:"windowed"`
		Totals   []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"totals"`
		Weekdays    []json.RawMessage `json:"weekdays"`
		FallbackIDs []int64           `json:"fallbackIds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))

	assert.Equal(t, "7d", view.Window)
	assert.Len(t, view.Series, 4)
	assert.Len(t, view.Weekdays, 7)
	require.Len(t, view.Totals, 2)
	assert.Equal(t, []int64{4}, view.FallbackIDs)

	rec = do(t, srv, http.MethodGet, "/api/dashboard?window=7d", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
}

func TestDashboardRejectsUnknownWindow(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/dashboard?window=1y", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "window", decode[errorBody](t, rec).Field)
}

func TestDashboardSourceFailure(t *testing.T) {
	st := memory.New(nil)
	srv := NewServer(":0", Options{
		Engine:       personalization.NewEngine(st, st, nil),
		Transactions: failingSource{},
		Logger:       applog.New(applog.Config{Output: &strings.Builder{}}),
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rec := do(t, srv, http.MethodGet, "/api/dashboard", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode[errorBody](t, rec).Error)
}

func TestCategories(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cats := decode[[]string](t, rec)
	assert.Contains(t, cats, "Food")
	assert.Contains(t, cats, "Transport")
}

func TestGoalLifecycle(t *testing.T) {
	srv, st := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/goals", `{"name":"Trip","targetAmount":"1.000,00","currentAmount":250}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[personalization.GoalStatus](t, rec)
	assert.NotEmpty(t, created.Goal.ID)
	assert.Equal(t, "Trip", created.Goal.Name)
	assert.True(t, created.Goal.TargetAmount.Equal(decimal.NewFromInt(1000)))
	assert.InDelta(t, 25.0, created.Progress, 0.001)

	rec = do(t, srv, http.MethodPut, "/api/goals/"+created.Goal.ID, `{"name":"Trip","targetAmount":1000,"currentAmount":1500}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.InDelta(t, 100.0, decode[personalization.GoalStatus](t, rec).Progress, 0.001)

	rec = do(t, srv, http.MethodGet, "/api/goals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]personalization.GoalStatus](t, rec)
	require.Len(t, list, 1)
	assert.True(t, list[0].Goal.CurrentAmount.Equal(decimal.NewFromInt(1500)))

	stored, err := st.LoadGoals(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, created.Goal.ID, stored[0].ID)
}

func TestGoalValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name  string
		body  string
		code  int
		field string
	}{
		{"missing name", `{"targetAmount":100}`, http.StatusUnprocessableEntity, "name"},
		{"zero target", `{"name":"x","targetAmount":0}`, http.StatusUnprocessableEntity, "targetAmount"},
		{"negative current", `{"name":"x","targetAmount":10,"currentAmount":-1}`, http.StatusUnprocessableEntity, "currentAmount"},
		{"bad amount", `{"name":"x","targetAmount":"abc"}`, http.StatusUnprocessableEntity, "targetAmount"},
		{"unknown field", `{"name":"x","targetAmount":10,"color":"red"}`, http.StatusBadRequest, ""},
		{"empty body", ``, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/goals", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.Equal(t, tt.field, decode[errorBody](t, rec).Field)
		})
	}
}

func TestCreateGoalAcceptsExponentAmount(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/goals", `{"name":"Reserva","targetAmount":1e3}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, decode[personalization.GoalStatus](t, rec).Goal.TargetAmount.Equal(decimal.NewFromInt(1000)))
}

func TestUpdateUnknownGoal(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/api/goals/missing", `{"name":"x","targetAmount":10}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlertLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/alerts", `{"category":"Food","limitAmount":300}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	alert := decode[core.SpendingAlert](t, rec)
	assert.True(t, alert.Enabled)

	// Same category replaces the limit rather than adding a second alert.
	rec = do(t, srv, http.MethodPost, "/api/alerts", `{"category":"Food","limitAmount":"500"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alert.ID, decode[core.SpendingAlert](t, rec).ID)

	rec = do(t, srv, http.MethodGet, "/api/alerts", "")
	require.Len(t, decode[[]core.SpendingAlert](t, rec), 1)

	rec = do(t, srv, http.MethodPost, "/api/alerts", `{"category":"Food","limitAmount":300}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/alerts/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	statuses := decode[[]personalization.AlertStatus](t, rec)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].OverLimit)
	assert.True(t, statuses[0].Spent.Equal(decimal.NewFromInt(370)))
	assert.True(t, statuses[0].Excess.Equal(decimal.NewFromInt(70)))

	rec = do(t, srv, http.MethodPatch, "/api/alerts/"+alert.ID, `{"enabled":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[core.SpendingAlert](t, rec).Enabled)

	rec = do(t, srv, http.MethodGet, "/api/alerts/status", "")
	assert.Empty(t, decode[[]personalization.AlertStatus](t, rec))
}

func TestToggleAlertErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPatch, "/api/alerts/nope", `{"enabled":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPatch, "/api/alerts/nope", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "enabled", decode[errorBody](t, rec).Field)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/goals", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/goals", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRateLimit(t *testing.T) {
	st := memory.New(nil)
	srv := NewServer(":0", Options{
		Engine:            personalization.NewEngine(st, st, nil),
		Transactions:      st,
		Logger:            applog.New(applog.Config{Output: &strings.Builder{}}),
		RequestsPerMinute: 2,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/goals", "").Code)
	}
	rec := do(t, srv, http.MethodGet, "/api/goals", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// Probes are outside the limited group.
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", "").Code)
}

func TestTrustedProxyForwardedClients(t *testing.T) {
	st := memory.New(nil)
	srv := NewServer(":0", Options{
		Engine:            personalization.NewEngine(st, st, nil),
		Transactions:      st,
		Logger:            applog.New(applog.Config{Output: &strings.Builder{}}),
		RequestsPerMinute: 1,
		TrustedProxies:    []string{"192.0.2.0/24"},
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	// httptest requests come from 192.0.2.1, so each forwarded client
	// gets its own budget.
	for _, client := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, client)
	}
}

func TestShutdownLogsProtectionStats(t *testing.T) {
	var out strings.Builder
	st := memory.New(nil)
	srv := NewServer(":0", Options{
		Engine:            personalization.NewEngine(st, st, nil),
		Transactions:      st,
		Logger:            applog.New(applog.Config{Output: &out}),
		RequestsPerMinute: 1,
	})

	do(t, srv, http.MethodGet, "/api/goals?q=../etc/passwd", "")
	do(t, srv, http.MethodGet, "/api/goals", "")
	require.NoError(t, srv.Shutdown(context.Background()))

	logs := out.String()
	assert.Contains(t, logs, "HTTP protection stats")
	assert.Contains(t, logs, "rate_limited=1")
	assert.Contains(t, logs, "suspicious_requests=1")
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv, _ := newTestServer(t)
	assert.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, srv.Shutdown(context.Background()))
}
