package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/gym-dashboard/internal/persistence"
)

const addMemberProcedure = "AddMemberAndPayment"

const callAddMemberAndPayment = `CALL AddMemberAndPayment($1, $2, $3)`

// SQLite has no stored procedures; these two statements reproduce the
// procedure body inside one client-side transaction.
const (
	insertMemberFromPlan = `
		INSERT INTO members (name, join_date, plan_id, expiration_date)
		SELECT ?, ?, plan_id, date(?, '+' || duration_months || ' months')
		FROM membership_plans
		WHERE plan_id = ?
	`
	insertInitialPayment = `
		INSERT INTO payments (member_id, amount, payment_date)
		SELECT ?, price, ?
		FROM membership_plans
		WHERE plan_id = ?
	`
)

// MemberWriter implements persistence.MemberWriter.
type MemberWriter struct {
	pool    *ConnectionPool
	timeout time.Duration
	metrics *Metrics
	mapper  *ErrorMapper
}

// NewMemberWriter creates a writer. A non-positive timeout selects DefaultQueryTimeout.
func NewMemberWriter(pool *ConnectionPool, timeout time.Duration, metrics *Metrics) *MemberWriter {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &MemberWriter{pool: pool, timeout: timeout, metrics: metrics, mapper: NewErrorMapper()}
}

// AddMemberAndPayment inserts the member and its initial payment atomically.
// Arguments are passed through untouched; the database owns validation.
func (w *MemberWriter) AddMemberAndPayment(ctx context.Context, member persistence.NewMember) (err error) {
	started := time.Now()
	defer func() {
		w.metrics.observe(addMemberProcedure, started)
		if err != nil {
			w.metrics.fail(addMemberProcedure, failureKind(err))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	joinDate := member.JoinDate.Format(persistence.DateLayout)

	switch w.pool.Driver() {
	case persistence.DriverSQLite:
		err = WithTransaction(ctx, conn, func(tx *sql.Tx) error {
			return insertMemberWithPayment(ctx, tx, member, joinDate)
		})
	default:
		_, err = conn.ExecContext(ctx, callAddMemberAndPayment, member.Name, joinDate, member.PlanID)
	}
	if err != nil {
		return w.writeError(err)
	}
	return nil
}

func (w *MemberWriter) writeError(err error) error {
	var wErr *persistence.WriteError
	if errors.As(err, &wErr) {
		return wErr
	}
	return &persistence.WriteError{
		Procedure: addMemberProcedure,
		Reason:    w.mapper.WriteReason(err),
		Err:       err,
	}
}

func insertMemberWithPayment(ctx context.Context, tx *sql.Tx, member persistence.NewMember, joinDate string) error {
	result, err := tx.ExecContext(ctx, insertMemberFromPlan, member.Name, joinDate, joinDate, member.PlanID)
	if err != nil {
		return err
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if inserted == 0 {
		return &persistence.WriteError{
			Procedure: addMemberProcedure,
			Reason:    persistence.ReasonPlanNotFound,
			Err:       fmt.Errorf("membership plan %d does not exist", member.PlanID),
		}
	}

	memberID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read member id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, insertInitialPayment, memberID, joinDate, member.PlanID); err != nil {
		return err
	}
	return nil
}
