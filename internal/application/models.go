package application

import (
	"strconv"
	"strings"
	"time"
)

// ReportName identifies one of the dashboard reports.
type ReportName string

const (
	ReportRoster             ReportName = "roster"
	ReportGrowth             ReportName = "growth"
	ReportEvents             ReportName = "events"
	ReportTrainers           ReportName = "trainers"
	ReportExpiring           ReportName = "expiring"
	ReportTrainerPerformance ReportName = "trainer-performance"
	ReportTopEvents          ReportName = "top-events"
	ReportPlanDistribution   ReportName = "plan-distribution"
	ReportDailySignups       ReportName = "daily-signups"
	ReportPlans              ReportName = "plans"
)

const (
	topEventsLimit        = 10
	dailySignupWindowDays = 30
)

// Table is a labelled, fully materialised report result.
type Table struct {
	Report  ReportName
	Columns []string
	Rows    [][]any
}

// Empty reports whether the table has no rows. An empty table is a valid result.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// RowLimit caps the number of roster rows. RowLimitAll disables the cap.
type RowLimit int

const (
	RowLimitAll     RowLimit = 0
	DefaultRowLimit RowLimit = 10
)

var allowedRowLimits = []RowLimit{10, 25, 50, 100, RowLimitAll}

const rowLimitMessage = "limit must be one of 10, 25, 50, 100, all"

// ParseRowLimit converts a query value into a RowLimit. An empty value yields DefaultRowLimit.
func ParseRowLimit(raw string) (RowLimit, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	switch raw {
	case "":
		return DefaultRowLimit, nil
	case "all":
		return RowLimitAll, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		return 0, newValidationError("limit", rowLimitMessage)
	}
	limit := RowLimit(n)
	if !limit.valid() {
		return 0, newValidationError("limit", rowLimitMessage)
	}
	return limit, nil
}

func (l RowLimit) valid() bool {
	for _, allowed := range allowedRowLimits {
		if l == allowed {
			return true
		}
	}
	return false
}

// String renders the limit the way it is accepted by ParseRowLimit.
func (l RowLimit) String() string {
	if l == RowLimitAll {
		return "all"
	}
	return strconv.Itoa(int(l))
}

// MonthSelection names a calendar month.
type MonthSelection struct {
	Year  int
	Month time.Month
}

// ParseMonthSelection parses a YYYY-MM value.
func ParseMonthSelection(raw string) (MonthSelection, error) {
	parsed, err := time.Parse("2006-01", strings.TrimSpace(raw))
	if err != nil {
		return MonthSelection{}, newValidationError("month", "month must use the YYYY-MM format")
	}
	return MonthSelection{Year: parsed.Year(), Month: parsed.Month()}, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) MonthSelection {
	return MonthSelection{Year: t.Year(), Month: t.Month()}
}

func (m MonthSelection) validate() *ValidationError {
	vErr := &ValidationError{}
	if m.Year < 1 || m.Year > 9999 {
		vErr.add("year", "year must be between 1 and 9999")
	}
	if m.Month < time.January || m.Month > time.December {
		vErr.add("month", "month must be between 1 and 12")
	}
	return vErr
}

// bounds returns the half open date range [first of month, first of next month).
func (m MonthSelection) bounds() (time.Time, time.Time) {
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// String renders the month as YYYY-MM.
func (m MonthSelection) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// MonthlyGrowth is one point of the growth series.
type MonthlyGrowth struct {
	Month      string
	NewMembers int64
}

// GrowthSummary holds the headline figures derived from the growth series.
type GrowthSummary struct {
	TotalNewMembers int64
	BestMonth       MonthlyGrowth
	MostRecentMonth MonthlyGrowth
}

// GrowthReport pairs the growth table with its summary. Summary is nil for an empty series.
type GrowthReport struct {
	Table   Table
	Summary *GrowthSummary
}

// Plan is an entry of the membership plan picker.
type Plan struct {
	ID   int64
	Name string
}

// AddMemberInput captures the add-member form fields.
type AddMemberInput struct {
	Name     string
	JoinDate time.Time
	PlanID   int64
}
