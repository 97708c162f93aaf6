package kpishandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paws/internal/domain/audit"
	"paws/internal/domain/identity"
	"paws/internal/domain/kpi"
	"paws/internal/transport/http/api"
	"paws/internal/transport/http/middleware"
	"paws/internal/transport/http/shared"
)

type Handler struct {
	Service *kpi.Service
	Audit   *audit.Service
}

func NewHandler(service *kpi.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/kpis", func(r chi.Router) {
		r.With(middleware.RequirePermission(identity.PermKPIRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(identity.PermKPIWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(identity.PermKPIRead)).Get("/{kpiID}", h.handleGet)
		r.With(middleware.RequirePermission(identity.PermKPIWrite)).Put("/{kpiID}", h.handleUpdate)
		r.With(middleware.RequirePermission(identity.PermKPIWrite)).Delete("/{kpiID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.Service.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list kpis", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, kpis, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload kpi.KPI
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Service.Create(r.Context(), &payload)
	if err != nil {
		var verr *kpi.ValidationError
		if errors.As(err, &verr) {
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", verr.Message,
				map[string]any{"field": verr.Field}, middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "create_failed", "failed to create kpi", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "kpi.create", "kpi", created.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, created); err != nil {
		slog.Warn("audit kpi.create failed", "err", err)
	}

	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.Get(r.Context(), chi.URLParam(r, "kpiID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "kpi not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, item, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	kpiID := chi.URLParam(r, "kpiID")

	var payload kpi.KPI
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Service.Update(r.Context(), kpiID, &payload)
	if err != nil {
		var verr *kpi.ValidationError
		switch {
		case errors.As(err, &verr):
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", verr.Message,
				map[string]any{"field": verr.Field}, middleware.GetRequestID(r.Context()))
		case errors.Is(err, kpi.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "kpi not found", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update kpi", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "kpi.update", "kpi", kpiID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, updated); err != nil {
		slog.Warn("audit kpi.update failed", "err", err)
	}

	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	kpiID := chi.URLParam(r, "kpiID")

	if err := h.Service.Delete(r.Context(), kpiID); err != nil {
		if errors.Is(err, kpi.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "kpi not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "delete_failed", "failed to delete kpi", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "kpi.delete", "kpi", kpiID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit kpi.delete failed", "err", err)
	}

	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
