package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/example/gym-dashboard/internal/persistence"
)

var (
	memberColumns             = []string{"Member ID", "Name", "Join Date", "Plan", "Expiration Date"}
	growthColumns             = []string{"Month", "New Members"}
	eventColumns              = []string{"Event ID", "Event Name", "Event Date", "Trainer", "Description"}
	trainerColumns            = []string{"Trainer ID", "Name", "Specialty", "Available Days"}
	trainerPerformanceColumns = []string{"Trainer", "Total Events"}
	topEventColumns           = []string{"Event", "Attendance Count"}
	planDistributionColumns   = []string{"Plan", "Members"}
	dailySignupColumns        = []string{"Join Date", "New Members"}
	planColumns               = []string{"Plan ID", "Plan"}
)

// ReportService builds, executes, and labels the dashboard reports.
type ReportService struct {
	executor persistence.QueryExecutor
	now      func() time.Time
	logger   *slog.Logger
}

// NewReportService constructs a report service with the provided dependencies.
func NewReportService(executor persistence.QueryExecutor, now func() time.Time) *ReportService {
	return NewReportServiceWithLogger(executor, now, nil)
}

// NewReportServiceWithLogger constructs a report service with a specified logger.
func NewReportServiceWithLogger(executor persistence.QueryExecutor, now func() time.Time, logger *slog.Logger) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{executor: executor, now: now, logger: defaultLogger(logger)}
}

func (s *ReportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReportService", operation, attrs...)
}

type buildFunc func(reportQueries) (statement, error)

// run renders, executes, and relabels one report.
func (s *ReportService) run(ctx context.Context, report ReportName, columns []string, build buildFunc, attrs ...any) (table Table, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}
	if s.executor == nil {
		err = fmt.Errorf("query executor not configured")
		return
	}

	logger := s.loggerWith(ctx, string(report), attrs...)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "report failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "report built", "rows", len(table.Rows))
	}()

	stmt, err := build(newReportQueries(s.executor.Dialect()))
	if err != nil {
		return
	}

	result, err := s.executor.Query(persistence.WithOperation(ctx, string(report)), stmt.SQL, stmt.Args...)
	if err != nil {
		return
	}
	if len(result.Columns) != len(columns) {
		err = &persistence.QueryError{
			Statement: stmt.SQL,
			Err:       fmt.Errorf("expected %d columns, got %d", len(columns), len(result.Columns)),
		}
		return
	}

	rows := result.Rows
	if rows == nil {
		rows = [][]any{}
	}
	table = Table{Report: report, Columns: append([]string(nil), columns...), Rows: rows}
	return
}

// Roster lists members with their plan, newest first, capped by limit.
func (s *ReportService) Roster(ctx context.Context, limit RowLimit) (Table, error) {
	if !limit.valid() {
		return Table{}, newValidationError("limit", rowLimitMessage)
	}
	return s.run(ctx, ReportRoster, memberColumns, func(q reportQueries) (statement, error) {
		return q.roster(limit)
	}, "limit", limit.String())
}

// GrowthByMonth counts new members per join month and summarises the series.
func (s *ReportService) GrowthByMonth(ctx context.Context) (GrowthReport, error) {
	table, err := s.run(ctx, ReportGrowth, growthColumns, reportQueries.growth)
	if err != nil {
		return GrowthReport{}, err
	}
	series, err := growthSeries(table)
	if err != nil {
		return GrowthReport{}, err
	}
	return GrowthReport{Table: table, Summary: summarizeGrowth(series)}, nil
}

// Events lists events with their trainer in date order.
func (s *ReportService) Events(ctx context.Context) (Table, error) {
	return s.run(ctx, ReportEvents, eventColumns, reportQueries.events)
}

// Trainers lists all trainers.
func (s *ReportService) Trainers(ctx context.Context) (Table, error) {
	return s.run(ctx, ReportTrainers, trainerColumns, reportQueries.trainers)
}

// ExpiringInMonth lists members whose membership expires within the given month.
func (s *ReportService) ExpiringInMonth(ctx context.Context, month MonthSelection) (Table, error) {
	if vErr := month.validate(); vErr.HasErrors() {
		return Table{}, vErr
	}
	return s.run(ctx, ReportExpiring, memberColumns, func(q reportQueries) (statement, error) {
		return q.expiring(month)
	}, "month", month.String())
}

// TrainerPerformance counts events per trainer, including trainers with none.
func (s *ReportService) TrainerPerformance(ctx context.Context) (Table, error) {
	return s.run(ctx, ReportTrainerPerformance, trainerPerformanceColumns, reportQueries.trainerPerformance)
}

// TopAttendedEvents returns the ten events with the highest attendance.
func (s *ReportService) TopAttendedEvents(ctx context.Context) (Table, error) {
	return s.run(ctx, ReportTopEvents, topEventColumns, reportQueries.topEvents)
}

// PlanDistribution counts members per membership plan.
func (s *ReportService) PlanDistribution(ctx context.Context) (Table, error) {
	return s.run(ctx, ReportPlanDistribution, planDistributionColumns, reportQueries.planDistribution)
}

// DailySignups counts joins per day over the last thirty days, today included.
func (s *ReportService) DailySignups(ctx context.Context) (Table, error) {
	today := s.today()
	return s.run(ctx, ReportDailySignups, dailySignupColumns, func(q reportQueries) (statement, error) {
		return q.dailySignups(today)
	}, "today", today.Format(persistence.DateLayout))
}

// Plans lists the membership plans offered by the add-member form.
func (s *ReportService) Plans(ctx context.Context) ([]Plan, error) {
	table, err := s.run(ctx, ReportPlans, planColumns, reportQueries.plans)
	if err != nil {
		return nil, err
	}
	plans := make([]Plan, 0, len(table.Rows))
	for _, row := range table.Rows {
		id, err := toInt64(row[0])
		if err != nil {
			return nil, &persistence.QueryError{Statement: "plans", Err: err}
		}
		plans = append(plans, Plan{ID: id, Name: fmt.Sprint(row[1])})
	}
	return plans, nil
}

// CurrentMonth returns the month containing the service clock's today.
func (s *ReportService) CurrentMonth() MonthSelection {
	return MonthOf(s.today())
}

func (s *ReportService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func growthSeries(table Table) ([]MonthlyGrowth, error) {
	series := make([]MonthlyGrowth, 0, len(table.Rows))
	for _, row := range table.Rows {
		count, err := toInt64(row[1])
		if err != nil {
			return nil, &persistence.QueryError{Statement: string(ReportGrowth), Err: err}
		}
		series = append(series, MonthlyGrowth{Month: fmt.Sprint(row[0]), NewMembers: count})
	}
	return series, nil
}

// summarizeGrowth derives the headline figures from an ascending series.
// The best month is the first month holding the maximum count.
func summarizeGrowth(series []MonthlyGrowth) *GrowthSummary {
	if len(series) == 0 {
		return nil
	}
	summary := &GrowthSummary{BestMonth: series[0], MostRecentMonth: series[len(series)-1]}
	for _, point := range series {
		summary.TotalNewMembers += point.NewMembers
		if point.NewMembers > summary.BestMonth.NewMembers {
			summary.BestMonth = point
		}
	}
	return summary
}

func toInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case float64:
		return int64(val), nil
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse integer %q: %w", val, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected integer value %T", v)
	}
}
