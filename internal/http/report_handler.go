package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/gym-dashboard/internal/application"
)

type reportService interface {
	Roster(ctx context.Context, limit application.RowLimit) (application.Table, error)
	GrowthByMonth(ctx context.Context) (application.GrowthReport, error)
	Events(ctx context.Context) (application.Table, error)
	Trainers(ctx context.Context) (application.Table, error)
	ExpiringInMonth(ctx context.Context, month application.MonthSelection) (application.Table, error)
	TrainerPerformance(ctx context.Context) (application.Table, error)
	TopAttendedEvents(ctx context.Context) (application.Table, error)
	PlanDistribution(ctx context.Context) (application.Table, error)
	DailySignups(ctx context.Context) (application.Table, error)
	Plans(ctx context.Context) ([]application.Plan, error)
	CurrentMonth() application.MonthSelection
}

var emptyMessages = map[application.ReportName]string{
	application.ReportRoster:             "No members registered yet.",
	application.ReportGrowth:             "No data available yet. Add some members first.",
	application.ReportEvents:             "No upcoming events.",
	application.ReportTrainers:           "No trainers registered yet.",
	application.ReportExpiring:           "No members expiring this month.",
	application.ReportTrainerPerformance: "No events assigned to any trainer yet.",
	application.ReportTopEvents:          "No attendance data available.",
	application.ReportPlanDistribution:   "No members registered yet.",
	application.ReportDailySignups:       "No signups in the last 30 days.",
}

type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReportHandler", operation, attrs...)
}

func (h *ReportHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

// respond writes table, or maps err when the report failed.
func (h *ReportHandler) respond(w http.ResponseWriter, r *http.Request, operation string, table application.Table, err error, decorate ...func(*reportResponse)) {
	if err != nil {
		logFailure(r.Context(), h.log(r.Context(), operation), "report request failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := toReportResponse(table)
	for _, fn := range decorate {
		fn(&resp)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *ReportHandler) Roster(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	limit, err := application.ParseRowLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.respond(w, r, "Roster", application.Table{}, err)
		return
	}

	table, err := h.service.Roster(r.Context(), limit)
	h.respond(w, r, "Roster", table, err, func(resp *reportResponse) {
		resp.Limit = limit.String()
	})
}

func (h *ReportHandler) Growth(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	report, err := h.service.GrowthByMonth(r.Context())
	h.respond(w, r, "Growth", report.Table, err, func(resp *reportResponse) {
		resp.Summary = toGrowthSummaryDTO(report.Summary)
	})
}

func (h *ReportHandler) Events(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	table, err := h.service.Events(r.Context())
	h.respond(w, r, "Events", table, err)
}

func (h *ReportHandler) Trainers(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	table, err := h.service.Trainers(r.Context())
	h.respond(w, r, "Trainers", table, err)
}

func (h *ReportHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	month := h.service.CurrentMonth()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := application.ParseMonthSelection(raw)
		if err != nil {
			h.respond(w, r, "Expiring", application.Table{}, err)
			return
		}
		month = parsed
	}

	table, err := h.service.ExpiringInMonth(r.Context(), month)
	h.respond(w, r, "Expiring", table, err, func(resp *reportResponse) {
		resp.Month = month.String()
	})
}

func (h *ReportHandler) TrainerPerformance(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	table, err := h.service.TrainerPerformance(r.Context())
	h.respond(w, r, "TrainerPerformance", table, err)
}

func (h *ReportHandler) TopEvents(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	table, err := h.service.TopAttendedEvents(r.Context())
	h.respond(w, r, "TopEvents", table, err)
}

func (h *ReportHandler) PlanDistribution(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	table, err := h.service.PlanDistribution(r.Context())
	h.respond(w, r, "PlanDistribution", table, err)
}

func (h *ReportHandler) DailySignups(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	table, err := h.service.DailySignups(r.Context())
	h.respond(w, r, "DailySignups", table, err)
}

func (h *ReportHandler) Plans(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	plans, err := h.service.Plans(r.Context())
	if err != nil {
		logFailure(r.Context(), h.log(r.Context(), "Plans"), "plan listing failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := plansResponse{Plans: make([]planDTO, 0, len(plans))}
	for _, plan := range plans {
		resp.Plans = append(resp.Plans, planDTO{ID: plan.ID, Name: plan.Name})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type reportResponse struct {
	Report   string            `json:"report"`
	Columns  []string          `json:"columns"`
	Rows     [][]any           `json:"rows"`
	RowCount int               `json:"row_count"`
	Empty    bool              `json:"empty"`
	Message  string            `json:"message,omitempty"`
	Limit    string            `json:"limit,omitempty"`
	Month    string            `json:"month,omitempty"`
	Summary  *growthSummaryDTO `json:"summary,omitempty"`
}

type monthlyGrowthDTO struct {
	Month      string `json:"month"`
	NewMembers int64  `json:"new_members"`
}

type growthSummaryDTO struct {
	TotalNewMembers int64            `json:"total_new_members"`
	BestMonth       monthlyGrowthDTO `json:"best_month"`
	MostRecentMonth monthlyGrowthDTO `json:"most_recent_month"`
}

type planDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type plansResponse struct {
	Plans []planDTO `json:"plans"`
}

func toReportResponse(table application.Table) reportResponse {
	rows := table.Rows
	if rows == nil {
		rows = [][]any{}
	}
	resp := reportResponse{
		Report:   string(table.Report),
		Columns:  table.Columns,
		Rows:     rows,
		RowCount: len(rows),
		Empty:    table.Empty(),
	}
	if resp.Empty {
		resp.Message = emptyMessages[table.Report]
	}
	return resp
}

func toGrowthSummaryDTO(summary *application.GrowthSummary) *growthSummaryDTO {
	if summary == nil {
		return nil
	}
	return &growthSummaryDTO{
		TotalNewMembers: summary.TotalNewMembers,
		BestMonth:       monthlyGrowthDTO{Month: summary.BestMonth.Month, NewMembers: summary.BestMonth.NewMembers},
		MostRecentMonth: monthlyGrowthDTO{Month: summary.MostRecentMonth.Month, NewMembers: summary.MostRecentMonth.NewMembers},
	}
}
