package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/gym-dashboard/internal/application"
	"github.com/example/gym-dashboard/internal/persistence"
)

type memberService interface {
	AddMember(ctx context.Context, input application.AddMemberInput) error
}

type MemberHandler struct {
	service   memberService
	responder responder
	logger    *slog.Logger
}

func NewMemberHandler(service memberService, logger *slog.Logger) *MemberHandler {
	base := defaultLogger(logger)
	return &MemberHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MemberHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MemberHandler", operation, attrs...)
}

// Create registers a member together with the initial payment.
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode member request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "invalid join date", "join_date", req.JoinDate)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "plan_id", input.PlanID)
	if err := h.service.AddMember(r.Context(), input); err != nil {
		logFailure(r.Context(), logger, "member registration failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "member registered")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, memberResponse{
		Message:  "Member added successfully",
		Name:     input.Name,
		JoinDate: input.JoinDate.Format(persistence.DateLayout),
		PlanID:   input.PlanID,
	})
}

type memberRequest struct {
	Name     string `json:"name"`
	JoinDate string `json:"join_date"`
	PlanID   int64  `json:"plan_id"`
}

func (req memberRequest) toInput() (application.AddMemberInput, error) {
	joined, err := time.Parse(persistence.DateLayout, strings.TrimSpace(req.JoinDate))
	if err != nil {
		return application.AddMemberInput{}, errBadJoinDate
	}
	return application.AddMemberInput{Name: req.Name, JoinDate: joined, PlanID: req.PlanID}, nil
}

type memberResponse struct {
	Message  string `json:"message"`
	Name     string `json:"name"`
	JoinDate string `json:"join_date"`
	PlanID   int64  `json:"plan_id"`
}
