package templateshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paws/internal/domain/audit"
	"paws/internal/domain/identity"
	"paws/internal/domain/template"
	"paws/internal/transport/http/api"
	"paws/internal/transport/http/middleware"
	"paws/internal/transport/http/shared"
)

type Handler struct {
	Service *template.Service
	Audit   *audit.Service
}

func NewHandler(service *template.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/templates", func(r chi.Router) {
		r.With(middleware.RequirePermission(identity.PermTemplateRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(identity.PermTemplateWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(identity.PermTemplateRead)).Get("/{templateID}", h.handleGet)
		r.With(middleware.RequirePermission(identity.PermTemplateWrite)).Put("/{templateID}", h.handleUpdate)
		r.With(middleware.RequirePermission(identity.PermTemplateWrite)).Delete("/{templateID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Service.List(r.Context(), r.URL.Query().Get("formType"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list templates", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, templates, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload template.Template
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Enum("formType", payload.FormType, []string{template.FormTypeCSR, template.FormTypeTeamLead}, "unknown form type")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Create(r.Context(), &payload)
	if err != nil {
		var verr *template.ValidationError
		if errors.As(err, &verr) {
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", verr.Message,
				map[string]any{"field": verr.Field}, middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "create_failed", "failed to create template", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "template.create", "appraisal_template", created.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"name": created.Name, "formType": created.FormType}); err != nil {
		slog.Warn("audit template.create failed", "err", err)
	}

	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.Service.Get(r.Context(), chi.URLParam(r, "templateID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "template not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, tpl, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	templateID := chi.URLParam(r, "templateID")

	var payload template.Template
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Service.Update(r.Context(), templateID, &payload)
	if err != nil {
		var verr *template.ValidationError
		switch {
		case errors.As(err, &verr):
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", verr.Message,
				map[string]any{"field": verr.Field}, middleware.GetRequestID(r.Context()))
		case errors.Is(err, template.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "template not found", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update template", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "template.update", "appraisal_template", templateID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"name": updated.Name}); err != nil {
		slog.Warn("audit template.update failed", "err", err)
	}

	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	templateID := chi.URLParam(r, "templateID")

	if err := h.Service.Delete(r.Context(), templateID); err != nil {
		if errors.Is(err, template.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "template not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "delete_failed", "failed to delete template", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "template.delete", "appraisal_template", templateID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit template.delete failed", "err", err)
	}

	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
