package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/gym-dashboard/internal/persistence"
)

// MemberService registers new members through the transactional writer.
type MemberService struct {
	writer persistence.MemberWriter
	logger *slog.Logger
}

// NewMemberService constructs a member service with the provided writer.
func NewMemberService(writer persistence.MemberWriter) *MemberService {
	return NewMemberServiceWithLogger(writer, nil)
}

// NewMemberServiceWithLogger constructs a member service with a specified logger.
func NewMemberServiceWithLogger(writer persistence.MemberWriter, logger *slog.Logger) *MemberService {
	return &MemberService{writer: writer, logger: defaultLogger(logger)}
}

func (s *MemberService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MemberService", operation, attrs...)
}

// AddMember stores the member and its initial payment atomically. Input is passed
// through unchanged; the database enforces plan existence and name rules.
func (s *MemberService) AddMember(ctx context.Context, input AddMemberInput) (err error) {
	if s == nil {
		return fmt.Errorf("MemberService is nil")
	}
	if s.writer == nil {
		return fmt.Errorf("member writer not configured")
	}

	logger := s.loggerWith(ctx, "AddMember",
		"plan_id", input.PlanID,
		"join_date", input.JoinDate.Format(persistence.DateLayout),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add member", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "member added")
	}()

	err = s.writer.AddMemberAndPayment(persistence.WithOperation(ctx, "add_member"), persistence.NewMember{
		Name:     input.Name,
		JoinDate: input.JoinDate,
		PlanID:   input.PlanID,
	})
	return err
}
