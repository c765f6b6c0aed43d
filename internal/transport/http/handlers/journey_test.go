package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"hradmin/internal/app/server"
	"hradmin/internal/domain/auth"
	"hradmin/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testConfig() config.Config {
	return config.Config{
		Environment:        "test",
		APIBasePath:        "/api/v1",
		StoreDriver:        config.StoreSQLite,
		SQLitePath:         ":memory:",
		RunSeed:            true,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
		MetricsEnabled:     true,
		CORSOrigins:        []string{"http://localhost:5173"},
		ShutdownTimeout:    time.Second,
	}
}

func startServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	app, err := server.New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err, "failed to start app")
	ts := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		ts.Close()
		_ = app.Close(context.Background())
	})
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, ts.URL+"/api/v1"+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestEmployeeLifecycleJourney(t *testing.T) {
	ts := startServer(t, testConfig())

	status, env := call(t, ts, http.MethodGet, "/roles", "", nil)
	require.Equal(t, http.StatusOK, status)
	roles := decodeData[[]map[string]string](t, env)
	require.NotEmpty(t, roles)
	roleID := roles[0]["id"]

	status, env = call(t, ts, http.MethodGet, "/roles/"+roleID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, roles[0]["roleName"], decodeData[map[string]string](t, env)["roleName"])

	status, _ = call(t, ts, http.MethodGet, "/levels/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = call(t, ts, http.MethodPost, "/employees", "", map[string]any{
		"firstName":     "Asha",
		"lastName":      "Rao",
		"employeeCode":  "EMP-100",
		"roleId":        roleID,
		"annualCtc":     120000,
		"monthlyCtc":    1,
		"contactNumber": "9876543210",
		"email":         "asha@example.com",
		"dateOfJoining": "2023-04-01",
	})
	require.Equal(t, http.StatusCreated, status)
	employee := decodeData[map[string]any](t, env)
	employeeID := employee["id"].(string)
	assert.Equal(t, 10000.0, employee["monthlyCtc"])
	assert.Equal(t, "Active", employee["status"])

	status, env = call(t, ts, http.MethodGet, "/client-employees/employee/"+employeeID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, env = call(t, ts, http.MethodGet, "/currencies", "", nil)
	require.Equal(t, http.StatusOK, status)
	currencies := decodeData[[]map[string]string](t, env)
	require.NotEmpty(t, currencies)

	status, env = call(t, ts, http.MethodPost, "/clients", "", map[string]any{"name": "Acme", "currencyId": currencies[0]["id"]})
	require.Equal(t, http.StatusCreated, status)
	clientID := decodeData[map[string]any](t, env)["id"].(string)

	status, env = call(t, ts, http.MethodPost, "/client-employees", "", map[string]any{
		"employeeId":     employeeID,
		"clientId":       clientID,
		"startDate":      "2024-01-01",
		"monthlyBilling": 5000,
		"status":         "Active",
	})
	require.Equal(t, http.StatusCreated, status)
	assignmentID := decodeData[map[string]any](t, env)["id"].(string)

	status, env = call(t, ts, http.MethodGet, "/client-employees/employee/"+employeeID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assignments := decodeData[[]map[string]any](t, env)
	require.Len(t, assignments, 1)
	client := assignments[0]["client"].(map[string]any)
	assert.Equal(t, "Acme", client["name"])
	assert.Equal(t, currencies[0]["code"], client["currency"].(map[string]any)["code"])

	status, env = call(t, ts, http.MethodDelete, "/employees/"+employeeID, "", nil)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "employee_active", env.Error.Code)

	employee["status"] = "Inactive"
	employee["annualCtc"] = 60000
	status, env = call(t, ts, http.MethodPut, "/employees/"+employeeID, "", employee)
	require.Equal(t, http.StatusOK, status)
	updated := decodeData[map[string]any](t, env)
	assert.Equal(t, 5000.0, updated["monthlyCtc"])
	assert.Equal(t, "Inactive", updated["status"])

	status, env = call(t, ts, http.MethodDelete, "/employees/"+employeeID, "", nil)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "employee_has_active_assignments", env.Error.Code)

	status, _ = call(t, ts, http.MethodPut, "/client-employees/"+assignmentID, "", map[string]any{
		"employeeId":     employeeID,
		"clientId":       clientID,
		"startDate":      "2024-01-01",
		"endDate":        "2024-06-30",
		"monthlyBilling": 5000,
		"status":         "Inactive",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = call(t, ts, http.MethodDelete, "/employees/"+employeeID, "", nil)
	require.Equal(t, http.StatusNoContent, status)

	status, env = call(t, ts, http.MethodGet, "/employees/"+employeeID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", env.Error.Code)

	status, env = call(t, ts, http.MethodGet, "/audit/events?entityId="+employeeID, "", nil)
	require.Equal(t, http.StatusOK, status)
	events := decodeData[[]map[string]any](t, env)
	require.Len(t, events, 3)
	assert.Equal(t, "core.employee.delete", events[0]["action"])
}

func TestEmployeeValidationErrors(t *testing.T) {
	ts := startServer(t, testConfig())

	status, env := call(t, ts, http.MethodPost, "/employees", "", map[string]any{
		"firstName":     "",
		"contactNumber": "12345",
		"email":         "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", env.Error.Code)

	status, env = call(t, ts, http.MethodPost, "/payments", "", map[string]any{"amount": 0, "receivedDate": "2024-03-01"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", env.Error.Code)
}

func TestPaymentsAndReceipt(t *testing.T) {
	ts := startServer(t, testConfig())

	status, env := call(t, ts, http.MethodPost, "/payments", "", map[string]any{
		"amount":       2500.5,
		"receivedDate": "2024-03-01",
		"notes":        "March retainer",
	})
	require.Equal(t, http.StatusCreated, status)
	paymentID := decodeData[map[string]any](t, env)["id"].(string)

	status, env = call(t, ts, http.MethodPut, "/payments/"+paymentID, "", map[string]any{
		"amount":       3000,
		"receivedDate": "2024-03-02",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3000.0, decodeData[map[string]any](t, env)["amount"])

	status, env = call(t, ts, http.MethodGet, "/payments", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[[]map[string]any](t, env), 1)

	resp, err := ts.Client().Get(ts.URL + "/api/v1/payments/" + paymentID + "/receipt")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestMutationsRequireTokenWhenSecretSet(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "test-secret"
	ts := startServer(t, cfg)

	status, _ := call(t, ts, http.MethodGet, "/roles", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := call(t, ts, http.MethodPost, "/roles", "", map[string]string{"roleName": "Auditor"})
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", env.Error.Code)

	token, err := auth.GenerateToken(cfg.JWTSecret, "ops-admin", "Ops", time.Hour)
	require.NoError(t, err)
	status, _ = call(t, ts, http.MethodPost, "/roles", token, map[string]string{"roleName": "Auditor"})
	assert.Equal(t, http.StatusCreated, status)

	status, env = call(t, ts, http.MethodGet, "/audit/events?action=core.role.create&limit=1", "", nil)
	require.Equal(t, http.StatusOK, status)
	events := decodeData[[]map[string]any](t, env)
	require.Len(t, events, 1)
	assert.Equal(t, "ops-admin", events[0]["actorId"])
}

func TestOperationalEndpoints(t *testing.T) {
	ts := startServer(t, testConfig())

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp, err := ts.Client().Get(ts.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
