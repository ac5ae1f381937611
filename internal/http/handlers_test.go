package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gym-dashboard/internal/application"
	"github.com/example/gym-dashboard/internal/persistence"
)

type reportServiceStub struct {
	table  application.Table
	growth application.GrowthReport
	plans  []application.Plan
	err    error

	limit application.RowLimit
	month application.MonthSelection
}

func (s *reportServiceStub) Roster(ctx context.Context, limit application.RowLimit) (application.Table, error) {
	s.limit = limit
	return s.table, s.err
}

func (s *reportServiceStub) GrowthByMonth(ctx context.Context) (application.GrowthReport, error) {
	return s.growth, s.err
}

func (s *reportServiceStub) Events(ctx context.Context) (application.Table, error) {
	return s.table, s.err
}

func (s *reportServiceStub) Trainers(ctx context.Context) (application.Table, error) {
	return s.table, s.err
}

func (s *reportServiceStub) ExpiringInMonth(ctx context.Context, month application.MonthSelection) (application.Table, error) {
	s.month = month
	return s.table, s.err
}

func (s *reportServiceStub) TrainerPerformance(ctx context.Context) (application.Table, error) {
	return s.table, s.err
}

func (s *reportServiceStub) TopAttendedEvents(ctx context.Context) (application.Table, error) {
	return s.table, s.err
}

func (s *reportServiceStub) PlanDistribution(ctx context.Context) (application.Table, error) {
	return s.table, s.err
}

func (s *reportServiceStub) DailySignups(ctx context.Context) (application.Table, error) {
	return s.table, s.err
}

func (s *reportServiceStub) Plans(ctx context.Context) ([]application.Plan, error) {
	return s.plans, s.err
}

func (s *reportServiceStub) CurrentMonth() application.MonthSelection {
	return application.MonthSelection{Year: 2024, Month: time.March}
}

type memberServiceStub struct {
	err   error
	input application.AddMemberInput
	calls int
}

func (s *memberServiceStub) AddMember(ctx context.Context, input application.AddMemberInput) error {
	s.calls++
	s.input = input
	return s.err
}

type pingerStub struct {
	err error
}

func (p pingerStub) Ping(ctx context.Context) error {
	return p.err
}

func newTestRouter(reports *reportServiceStub, members *memberServiceStub, db Pinger) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(RouterConfig{
		Reports:  NewReportHandler(reports, logger),
		Members:  NewMemberHandler(members, logger),
		Database: db,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "# metrics\n")
		}),
		Logger: logger,
	})
}

func serve(t *testing.T, handler http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	payload := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func rosterTable() application.Table {
	return application.Table{
		Report:  application.ReportRoster,
		Columns: []string{"Member ID", "Name", "Join Date", "Plan", "Expiration Date"},
		Rows:    [][]any{{int64(5), "Alice", "2024-01-15", "Quarterly", "2024-04-15"}},
	}
}

func TestReportHandlers(t *testing.T) {
	t.Run("roster returns labelled rows", func(t *testing.T) {
		stub := &reportServiceStub{table: rosterTable()}
		rec, payload := serve(t, newTestRouter(stub, &memberServiceStub{}, nil), http.MethodGet, "/reports/roster?limit=25", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, application.RowLimit(25), stub.limit)
		assert.Equal(t, "roster", payload["report"])
		assert.Equal(t, []any{"Member ID", "Name", "Join Date", "Plan", "Expiration Date"}, payload["columns"])
		assert.Equal(t, []any{[]any{float64(5), "Alice", "2024-01-15", "Quarterly", "2024-04-15"}}, payload["rows"])
		assert.Equal(t, float64(1), payload["row_count"])
		assert.Equal(t, false, payload["empty"])
		assert.Equal(t, "25", payload["limit"])
		assert.NotContains(t, payload, "message")
	})

	t.Run("roster defaults to ten rows", func(t *testing.T) {
		stub := &reportServiceStub{table: rosterTable()}
		rec, _ := serve(t, newTestRouter(stub, &memberServiceStub{}, nil), http.MethodGet, "/reports/roster", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, application.DefaultRowLimit, stub.limit)
	})

	t.Run("roster rejects unsupported caps", func(t *testing.T) {
		stub := &reportServiceStub{table: rosterTable()}
		rec, payload := serve(t, newTestRouter(stub, &memberServiceStub{}, nil), http.MethodGet, "/reports/roster?limit=7", "")

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, payload["errors"], "limit")
	})

	t.Run("empty expiring report is informational", func(t *testing.T) {
		stub := &reportServiceStub{table: application.Table{
			Report:  application.ReportExpiring,
			Columns: []string{"Member ID", "Name", "Join Date", "Plan", "Expiration Date"},
		}}
		rec, payload := serve(t, newTestRouter(stub, &memberServiceStub{}, nil), http.MethodGet, "/reports/expiring?month=2024-02", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, application.MonthSelection{Year: 2024, Month: time.February}, stub.month)
		assert.Equal(t, true, payload["empty"])
		assert.Equal(t, float64(0), payload["row_count"])
		assert.Equal(t, []any{}, payload["rows"])
		assert.Equal(t, "No members expiring this month.", payload["message"])
		assert.Equal(t, "2024-02", payload["month"])
	})

	t.Run("expiring defaults to the current month", func(t *testing.T) {
		stub := &reportServiceStub{table: application.Table{Report: application.ReportExpiring}}
		rec, _ := serve(t, newTestRouter(stub, &memberServiceStub{}, nil), http.MethodGet, "/reports/expiring", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, application.MonthSelection{Year: 2024, Month: time.March}, stub.month)
	})

	t.Run("expiring rejects a malformed month", func(t *testing.T) {
		rec, _ := serve(t, newTestRouter(&reportServiceStub{}, &memberServiceStub{}, nil), http.MethodGet, "/reports/expiring?month=March", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("growth includes the summary", func(t *testing.T) {
		stub := &reportServiceStub{growth: application.GrowthReport{
			Table: application.Table{
				Report:  application.ReportGrowth,
				Columns: []string{"Month", "New Members"},
				Rows:    [][]any{{"2024-01", int64(2)}, {"2024-02", int64(4)}},
			},
			Summary: &application.GrowthSummary{
				TotalNewMembers: 6,
				BestMonth:       application.MonthlyGrowth{Month: "2024-02", NewMembers: 4},
				MostRecentMonth: application.MonthlyGrowth{Month: "2024-02", NewMembers: 4},
			},
		}}
		rec, payload := serve(t, newTestRouter(stub, &memberServiceStub{}, nil), http.MethodGet, "/reports/growth", "")

		require.Equal(t, http.StatusOK, rec.Code)
		summary, ok := payload["summary"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(6), summary["total_new_members"])
		assert.Equal(t, map[string]any{"month": "2024-02", "new_members": float64(4)}, summary["best_month"])
	})

	t.Run("maps persistence failures to status codes", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
		}{
			{err: &persistence.ConnectionError{Driver: persistence.DriverPostgres, Err: errors.New("refused")}, status: http.StatusServiceUnavailable},
			{err: &persistence.QueryError{Err: errors.New("syntax error")}, status: http.StatusInternalServerError},
			{err: errors.New("boom"), status: http.StatusInternalServerError},
		}
		for _, tc := range cases {
			stub := &reportServiceStub{err: tc.err}
			for _, path := range []string{
				"/reports/events", "/reports/trainers", "/reports/trainer-performance",
				"/reports/top-events", "/reports/plan-distribution", "/reports/daily-signups", "/plans",
			} {
				rec, _ := serve(t, newTestRouter(stub, &memberServiceStub{}, nil), http.MethodGet, path, "")
				assert.Equal(t, tc.status, rec.Code, "%s with %v", path, tc.err)
			}
		}
	})

	t.Run("plans are listed for the form", func(t *testing.T) {
		stub := &reportServiceStub{plans: []application.Plan{{ID: 1, Name: "Monthly"}}}
		rec, payload := serve(t, newTestRouter(stub, &memberServiceStub{}, nil), http.MethodGet, "/plans", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{map[string]any{"id": float64(1), "name": "Monthly"}}, payload["plans"])
	})
}

func TestMemberHandler_Create(t *testing.T) {
	t.Run("registers the member", func(t *testing.T) {
		members := &memberServiceStub{}
		rec, payload := serve(t, newTestRouter(&reportServiceStub{}, members, nil), http.MethodPost, "/members",
			`{"name":"Alice","join_date":"2024-01-15","plan_id":2}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, application.AddMemberInput{
			Name:     "Alice",
			JoinDate: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
			PlanID:   2,
		}, members.input)
		assert.Equal(t, "Member added successfully", payload["message"])
	})

	t.Run("reports database rejections", func(t *testing.T) {
		members := &memberServiceStub{err: &persistence.WriteError{
			Procedure: "AddMemberAndPayment",
			Reason:    persistence.ReasonPlanNotFound,
			Err:       errors.New("membership plan 999 does not exist"),
		}}
		rec, payload := serve(t, newTestRouter(&reportServiceStub{}, members, nil), http.MethodPost, "/members",
			`{"name":"Bob","join_date":"2024-01-15","plan_id":999}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "plan_not_found", payload["error_code"])
		assert.Equal(t, "membership plan 999 does not exist", payload["message"])
	})

	t.Run("rejects malformed bodies before calling the service", func(t *testing.T) {
		for _, body := range []string{
			`{"name":`,
			`{"name":"Alice","join_date":"15/01/2024","plan_id":2}`,
			`{"name":"Alice","plan_id":2}`,
		} {
			members := &memberServiceStub{}
			rec, _ := serve(t, newTestRouter(&reportServiceStub{}, members, nil), http.MethodPost, "/members", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.Zero(t, members.calls, body)
		}
	})

	t.Run("unreachable database is a 503", func(t *testing.T) {
		members := &memberServiceStub{err: &persistence.ConnectionError{Err: errors.New("refused")}}
		rec, _ := serve(t, newTestRouter(&reportServiceStub{}, members, nil), http.MethodPost, "/members",
			`{"name":"Alice","join_date":"2024-01-15","plan_id":2}`)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	rec, payload := serve(t, newTestRouter(&reportServiceStub{}, &memberServiceStub{}, pingerStub{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", payload["status"])

	rec, payload = serve(t, newTestRouter(&reportServiceStub{}, &memberServiceStub{}, pingerStub{err: errors.New("down")}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", payload["status"])

	rec, _ = serve(t, newTestRouter(&reportServiceStub{}, &memberServiceStub{}, nil), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# metrics")
}
