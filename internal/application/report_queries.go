package application

import (
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/example/gym-dashboard/internal/persistence"
)

// statement is a rendered query with its bound arguments.
type statement struct {
	SQL  string
	Args []any
}

// reportQueries renders every report query for one dialect. All caller
// supplied values are emitted as placeholders.
type reportQueries struct {
	driver  persistence.Driver
	dialect goqu.DialectWrapper
}

func newReportQueries(driver persistence.Driver) reportQueries {
	return reportQueries{driver: driver, dialect: goqu.Dialect(driver.GoquDialect())}
}

func (q reportQueries) render(ds *goqu.SelectDataset) (statement, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return statement{}, fmt.Errorf("render query: %w", err)
	}
	return statement{SQL: query, Args: args}, nil
}

func (q reportQueries) memberRoster() *goqu.SelectDataset {
	return q.dialect.
		From(goqu.T("members").As("m")).
		Join(goqu.T("membership_plans").As("p"), goqu.On(goqu.I("m.plan_id").Eq(goqu.I("p.plan_id")))).
		Select(
			goqu.I("m.member_id"),
			goqu.I("m.name"),
			goqu.I("m.join_date"),
			goqu.I("p.plan_name"),
			goqu.I("m.expiration_date"),
		)
}

func (q reportQueries) roster(limit RowLimit) (statement, error) {
	ds := q.memberRoster().Order(goqu.I("m.member_id").Desc())
	if limit != RowLimitAll {
		ds = ds.Limit(uint(limit))
	}
	return q.render(ds)
}

// monthOf renders the YYYY-MM bucket of a date column.
func (q reportQueries) monthOf(column string) exp.LiteralExpression {
	if q.driver == persistence.DriverSQLite {
		return goqu.L("strftime('%Y-%m', ?)", goqu.I(column))
	}
	return goqu.L("to_char(?, 'YYYY-MM')", goqu.I(column))
}

func (q reportQueries) growth() (statement, error) {
	month := q.monthOf("join_date")
	ds := q.dialect.
		From("members").
		Select(month.As("month"), goqu.COUNT(goqu.Star()).As("new_members")).
		GroupBy(month).
		Order(goqu.C("month").Asc())
	return q.render(ds)
}

func (q reportQueries) events() (statement, error) {
	ds := q.dialect.
		From(goqu.T("events").As("e")).
		Join(goqu.T("trainers").As("t"), goqu.On(goqu.I("e.trainer_id").Eq(goqu.I("t.trainer_id")))).
		Select(
			goqu.I("e.event_id"),
			goqu.I("e.event_name"),
			goqu.I("e.event_date"),
			goqu.I("t.name"),
			goqu.I("e.description"),
		).
		Order(goqu.I("e.event_date").Asc(), goqu.I("e.event_id").Asc())
	return q.render(ds)
}

func (q reportQueries) trainers() (statement, error) {
	ds := q.dialect.
		From("trainers").
		Select("trainer_id", "name", "specialty", "availability_days").
		Order(goqu.C("trainer_id").Asc())
	return q.render(ds)
}

func (q reportQueries) expiring(month MonthSelection) (statement, error) {
	start, next := month.bounds()
	ds := q.memberRoster().
		Where(
			goqu.I("m.expiration_date").Gte(start.Format(persistence.DateLayout)),
			goqu.I("m.expiration_date").Lt(next.Format(persistence.DateLayout)),
		).
		Order(goqu.I("m.expiration_date").Asc(), goqu.I("m.member_id").Asc())
	return q.render(ds)
}

func (q reportQueries) trainerPerformance() (statement, error) {
	ds := q.dialect.
		From(goqu.T("trainers").As("t")).
		LeftJoin(goqu.T("events").As("e"), goqu.On(goqu.I("t.trainer_id").Eq(goqu.I("e.trainer_id")))).
		Select(goqu.I("t.name"), goqu.COUNT(goqu.I("e.event_id")).As("event_count")).
		GroupBy(goqu.I("t.trainer_id"), goqu.I("t.name")).
		Order(goqu.C("event_count").Desc(), goqu.I("t.trainer_id").Asc())
	return q.render(ds)
}

func (q reportQueries) topEvents() (statement, error) {
	ds := q.dialect.
		From(goqu.T("event_attendance").As("a")).
		Join(goqu.T("events").As("e"), goqu.On(goqu.I("a.event_id").Eq(goqu.I("e.event_id")))).
		Select(goqu.I("e.event_name"), goqu.COUNT(goqu.I("a.member_id")).As("attendance_count")).
		GroupBy(goqu.I("e.event_id"), goqu.I("e.event_name")).
		Order(goqu.C("attendance_count").Desc(), goqu.I("e.event_id").Asc()).
		Limit(topEventsLimit)
	return q.render(ds)
}

func (q reportQueries) planDistribution() (statement, error) {
	ds := q.dialect.
		From(goqu.T("members").As("m")).
		Join(goqu.T("membership_plans").As("p"), goqu.On(goqu.I("m.plan_id").Eq(goqu.I("p.plan_id")))).
		Select(goqu.I("p.plan_name"), goqu.COUNT(goqu.I("m.member_id")).As("member_count")).
		GroupBy(goqu.I("p.plan_id"), goqu.I("p.plan_name")).
		Order(goqu.I("p.plan_id").Asc())
	return q.render(ds)
}

func (q reportQueries) dailySignups(today time.Time) (statement, error) {
	since := today.AddDate(0, 0, -dailySignupWindowDays)
	ds := q.dialect.
		From("members").
		Select(goqu.C("join_date"), goqu.COUNT(goqu.Star()).As("new_members")).
		Where(
			goqu.C("join_date").Gte(since.Format(persistence.DateLayout)),
			goqu.C("join_date").Lte(today.Format(persistence.DateLayout)),
		).
		GroupBy(goqu.C("join_date")).
		Order(goqu.C("join_date").Asc())
	return q.render(ds)
}

func (q reportQueries) plans() (statement, error) {
	ds := q.dialect.
		From("membership_plans").
		Select("plan_id", "plan_name").
		Order(goqu.C("plan_id").Asc())
	return q.render(ds)
}
