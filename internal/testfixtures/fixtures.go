package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/gym-dashboard/internal/persistence"
)

var (
	memberCounter  uint64
	trainerCounter uint64
	eventCounter   uint64
)

var referenceTime = time.Date(2024, time.June, 15, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Seeded membership plans installed by the bundled migrations.
var (
	PlanMonthly    = persistence.MembershipPlan{ID: 1, Name: "Monthly", DurationMonths: 1, Price: 40}
	PlanQuarterly  = persistence.MembershipPlan{ID: 2, Name: "Quarterly", DurationMonths: 3, Price: 110}
	PlanHalfYearly = persistence.MembershipPlan{ID: 3, Name: "Half-Yearly", DurationMonths: 6, Price: 200}
	PlanAnnual     = persistence.MembershipPlan{ID: 4, Name: "Annual", DurationMonths: 12, Price: 360}
)

// SeededPlans lists the plans in plan_id order.
func SeededPlans() []persistence.MembershipPlan {
	return []persistence.MembershipPlan{PlanMonthly, PlanQuarterly, PlanHalfYearly, PlanAnnual}
}

// ---------------------------- Member fixtures ----------------------------

// MemberOption configures the generated member fixture.
type MemberOption func(*persistence.Member)

// NewMemberFixture returns a deterministic member on the monthly plan joining on
// the reference date. ID is left zero so the database assigns it.
func NewMemberFixture(opts ...MemberOption) persistence.Member {
	idx := atomic.AddUint64(&memberCounter, 1)
	joined := Date(referenceTime.Year(), referenceTime.Month(), referenceTime.Day())
	member := persistence.Member{
		Name:           fmt.Sprintf("Member %03d", idx),
		JoinDate:       joined,
		PlanID:         PlanMonthly.ID,
		ExpirationDate: joined.AddDate(0, PlanMonthly.DurationMonths, 0),
	}
	for _, opt := range opts {
		opt(&member)
	}
	return member
}

// WithMemberName overrides the generated name.
func WithMemberName(name string) MemberOption {
	return func(m *persistence.Member) {
		m.Name = name
	}
}

// WithMemberPlan assigns the plan and recomputes the expiration date from it.
func WithMemberPlan(plan persistence.MembershipPlan) MemberOption {
	return func(m *persistence.Member) {
		m.PlanID = plan.ID
		m.ExpirationDate = m.JoinDate.AddDate(0, plan.DurationMonths, 0)
	}
}

// WithMemberJoinDate sets the join date, keeping the membership length unchanged.
func WithMemberJoinDate(joined time.Time) MemberOption {
	return func(m *persistence.Member) {
		length := m.ExpirationDate.Sub(m.JoinDate)
		m.JoinDate = joined
		m.ExpirationDate = joined.Add(length)
	}
}

// WithMemberExpiration overrides the expiration date.
func WithMemberExpiration(expires time.Time) MemberOption {
	return func(m *persistence.Member) {
		m.ExpirationDate = expires
	}
}

// ---------------------------- Trainer fixtures ---------------------------

// TrainerOption configures the generated trainer fixture.
type TrainerOption func(*persistence.Trainer)

// NewTrainerFixture returns a deterministic trainer.
func NewTrainerFixture(opts ...TrainerOption) persistence.Trainer {
	idx := atomic.AddUint64(&trainerCounter, 1)
	trainer := persistence.Trainer{
		Name:             fmt.Sprintf("Trainer %03d", idx),
		Specialty:        "Strength",
		AvailabilityDays: "Mon, Wed, Fri",
	}
	for _, opt := range opts {
		opt(&trainer)
	}
	return trainer
}

// WithTrainerName overrides the generated name.
func WithTrainerName(name string) TrainerOption {
	return func(t *persistence.Trainer) {
		t.Name = name
	}
}

// WithTrainerSpecialty overrides the specialty.
func WithTrainerSpecialty(specialty string) TrainerOption {
	return func(t *persistence.Trainer) {
		t.Specialty = specialty
	}
}

// ----------------------------- Event fixtures ----------------------------

// EventOption configures the generated event fixture.
type EventOption func(*persistence.Event)

// NewEventFixture returns a deterministic event led by trainerID.
func NewEventFixture(trainerID int64, opts ...EventOption) persistence.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	event := persistence.Event{
		Name:        fmt.Sprintf("Event %03d", idx),
		Date:        Date(referenceTime.Year(), referenceTime.Month(), referenceTime.Day()).AddDate(0, 0, int(idx%28)),
		TrainerID:   trainerID,
		Description: "Group session",
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// WithEventName overrides the generated name.
func WithEventName(name string) EventOption {
	return func(e *persistence.Event) {
		e.Name = name
	}
}

// WithEventDate overrides the event date.
func WithEventDate(date time.Time) EventOption {
	return func(e *persistence.Event) {
		e.Date = date
	}
}
