package persistence

import "time"

// Member is a row of the members table. ExpirationDate is computed by the database from the plan.
type Member struct {
	ID             int64
	Name           string
	JoinDate       time.Time
	PlanID         int64
	ExpirationDate time.Time
}

// MembershipPlan is a read-only membership tier.
type MembershipPlan struct {
	ID             int64
	Name           string
	DurationMonths int
	Price          float64
}

// Trainer represents a gym trainer.
type Trainer struct {
	ID               int64
	Name             string
	Specialty        string
	AvailabilityDays string
}

// Event represents a scheduled class or event led by a trainer.
type Event struct {
	ID          int64
	Name        string
	Date        time.Time
	TrainerID   int64
	Description string
}

// EventAttendance associates a member with an event they attended.
type EventAttendance struct {
	EventID  int64
	MemberID int64
}

// NewMember carries the arguments of AddMemberAndPayment.
type NewMember struct {
	Name     string
	JoinDate time.Time
	PlanID   int64
}

// DateLayout is the wire format for DATE values bound to statements.
const DateLayout = "2006-01-02"

// RowSet is a fully materialised query result.
type RowSet struct {
	Columns []string
	Rows    [][]any
}

// Empty reports whether the result contains no rows.
func (r RowSet) Empty() bool {
	return len(r.Rows) == 0
}
