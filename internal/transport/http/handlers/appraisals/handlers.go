package appraisalshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paws/internal/domain/appraisal"
	"paws/internal/domain/audit"
	"paws/internal/domain/identity"
	"paws/internal/transport/http/api"
	"paws/internal/transport/http/middleware"
	"paws/internal/transport/http/shared"
)

type Handler struct {
	Service *appraisal.Service
	Audit   *audit.Service
}

func NewHandler(service *appraisal.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/appraisals", func(r chi.Router) {
		r.With(middleware.RequirePermission(identity.PermAppraisalRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(identity.PermAppraisalCreate)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(identity.PermAppraisalRead)).Get("/{appraisalID}", h.handleGet)
		r.With(middleware.RequirePermission(identity.PermAppraisalScore)).Put("/{appraisalID}", h.handleUpdate)
		r.With(middleware.RequirePermission(identity.PermAppraisalCreate)).Post("/{appraisalID}/submit", h.handleSubmit)
		r.With(middleware.RequirePermission(identity.PermAppraisalDecide)).Post("/{appraisalID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(identity.PermAppraisalDecide)).Post("/{appraisalID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(identity.PermAppraisalRead)).Get("/{appraisalID}/print", h.handlePrint)
	})
}

func viewer(r *http.Request) appraisal.Viewer {
	user, _ := middleware.GetUser(r.Context())
	return appraisal.Viewer{UserID: user.UserID, Role: user.Role, Name: user.Name}
}

// failDomain maps the domain error taxonomy onto HTTP statuses.
func failDomain(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMsg string) {
	requestID := middleware.GetRequestID(r.Context())
	var verr *appraisal.ValidationError
	switch {
	case errors.As(err, &verr):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", verr.Message,
			map[string]any{"field": verr.Field}, requestID)
	case errors.Is(err, appraisal.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "appraisal not found", requestID)
	case errors.Is(err, appraisal.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, appraisal.ErrInvalidTransition):
		api.Fail(w, http.StatusBadRequest, "invalid_transition", "the appraisal state does not allow this action", requestID)
	case errors.Is(err, appraisal.ErrConflict):
		api.Fail(w, http.StatusConflict, "conflict", "the appraisal changed underneath this request, retry", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMsg, requestID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 20, 100)
	items, total, err := h.Service.List(r.Context(), viewer(r), appraisal.ListInput{
		Status:       r.URL.Query().Get("status"),
		ReviewPeriod: r.URL.Query().Get("reviewPeriod"),
		EmployeeID:   r.URL.Query().Get("employeeId"),
		Department:   r.URL.Query().Get("department"),
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		failDomain(w, r, err, "list_failed", "failed to list appraisals")
		return
	}
	api.Success(w, map[string]any{
		"items":  items,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload appraisal.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Service.Create(r.Context(), viewer(r), payload)
	if err != nil {
		failDomain(w, r, err, "create_failed", "failed to create appraisal")
		return
	}

	actor := viewer(r)
	if err := h.Audit.Record(r.Context(), actor.UserID, "appraisal.create", "appraisal", created.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"employeeId": created.EmployeeID, "reviewPeriod": created.ReviewPeriod}); err != nil {
		slog.Warn("audit appraisal.create failed", "err", err)
	}

	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.Service.Get(r.Context(), viewer(r), chi.URLParam(r, "appraisalID"))
	if err != nil {
		failDomain(w, r, err, "get_failed", "failed to load appraisal")
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload appraisal.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Service.Update(r.Context(), viewer(r), chi.URLParam(r, "appraisalID"), payload)
	if err != nil {
		failDomain(w, r, err, "update_failed", "failed to update appraisal")
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	appraisalID := chi.URLParam(r, "appraisalID")
	submitted, err := h.Service.SubmitAppraisal(r.Context(), viewer(r), appraisalID)
	if err != nil {
		failDomain(w, r, err, "submit_failed", "failed to submit appraisal")
		return
	}

	actor := viewer(r)
	if err := h.Audit.Record(r.Context(), actor.UserID, "appraisal.submit", "appraisal", appraisalID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"status": submitted.Status}); err != nil {
		slog.Warn("audit appraisal.submit failed", "err", err)
	}

	api.Success(w, submitted, middleware.GetRequestID(r.Context()))
}

type decisionRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	var payload decisionRequest
	if r.Body != nil {
		// Comment is optional on approval.
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	appraisalID := chi.URLParam(r, "appraisalID")
	approved, err := h.Service.ApproveAppraisal(r.Context(), viewer(r), appraisalID, payload.Comment)
	if err != nil {
		failDomain(w, r, err, "approve_failed", "failed to approve appraisal")
		return
	}

	actor := viewer(r)
	if err := h.Audit.Record(r.Context(), actor.UserID, "appraisal.approve", "appraisal", appraisalID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"status": approved.Status}); err != nil {
		slog.Warn("audit appraisal.approve failed", "err", err)
	}

	api.Success(w, approved, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	var payload decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	appraisalID := chi.URLParam(r, "appraisalID")
	rejected, err := h.Service.RejectAppraisal(r.Context(), viewer(r), appraisalID, payload.Comment)
	if err != nil {
		failDomain(w, r, err, "reject_failed", "failed to reject appraisal")
		return
	}

	actor := viewer(r)
	if err := h.Audit.Record(r.Context(), actor.UserID, "appraisal.reject", "appraisal", appraisalID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"comment": payload.Comment}); err != nil {
		slog.Warn("audit appraisal.reject failed", "err", err)
	}

	api.Success(w, rejected, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePrint(w http.ResponseWriter, r *http.Request) {
	a, err := h.Service.Get(r.Context(), viewer(r), chi.URLParam(r, "appraisalID"))
	if err != nil {
		failDomain(w, r, err, "print_failed", "failed to load appraisal")
		return
	}

	pdf, err := appraisal.RenderPDF(a)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "print_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="appraisal-`+a.ID+`.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("write pdf failed", "err", err)
	}
}
