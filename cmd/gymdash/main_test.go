package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gym-dashboard/internal/config"
	"github.com/example/gym-dashboard/internal/persistence"
)

func newTestDashboard(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.Config{
		Database: persistence.ConnectionConfig{
			Driver:   persistence.DriverSQLite,
			FilePath: filepath.Join(t.TempDir(), "gym.db"),
		},
		QueryTimeout: 2 * time.Second,
		AutoMigrate:  true,
	}
	now := func() time.Time { return time.Date(2024, time.January, 20, 10, 0, 0, 0, time.UTC) }

	app, err := newDashboard(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), now)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	server := httptest.NewServer(app.handler)
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func TestDashboard_EndToEnd(t *testing.T) {
	server := newTestDashboard(t)

	status, payload := getJSON(t, server.URL+"/healthz")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", payload["status"])

	status, payload = getJSON(t, server.URL+"/reports/roster")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, payload["empty"])

	resp, err := http.Post(server.URL+"/members", "application/json",
		strings.NewReader(`{"name":"Alice","join_date":"2024-01-15","plan_id":2}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(server.URL+"/members", "application/json",
		strings.NewReader(`{"name":"Bob","join_date":"2024-01-15","plan_id":999}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	status, payload = getJSON(t, server.URL+"/reports/roster?limit=all")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(1), payload["row_count"])
	rows := payload["rows"].([]any)
	assert.Equal(t, []any{"Alice", "2024-01-15", "Quarterly", "2024-04-15"}, rows[0].([]any)[1:])

	status, payload = getJSON(t, server.URL+"/reports/expiring?month=2024-04")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), payload["row_count"])

	status, payload = getJSON(t, server.URL+"/reports/daily-signups")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{[]any{"2024-01-15", float64(1)}}, payload["rows"])

	metrics, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(metrics.Body)
	metrics.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "gym_db_statement_duration_seconds")
	assert.Contains(t, string(body), `gym_db_statement_failures_total{kind="write",operation="AddMemberAndPayment"} 1`)
}
