package usershandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paws/internal/domain/audit"
	"paws/internal/domain/identity"
	"paws/internal/transport/http/api"
	"paws/internal/transport/http/middleware"
	"paws/internal/transport/http/shared"
)

type Handler struct {
	Store   *identity.Store
	Service *identity.Service
	Audit   *audit.Service
}

func NewHandler(store *identity.Store, service *identity.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequirePermission(identity.PermUserRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(identity.PermUserRead)).Get("/managers", h.handleListManagers)
		r.With(middleware.RequirePermission(identity.PermUserWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(identity.PermUserRead)).Get("/{userID}", h.handleGet)
		r.With(middleware.RequirePermission(identity.PermUserWrite)).Put("/{userID}", h.handleUpdate)
		r.With(middleware.RequirePermission(identity.PermUserWrite)).Delete("/{userID}", h.handleDeactivate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := identity.ListFilter{
		Role:       r.URL.Query().Get("role"),
		Department: r.URL.Query().Get("department"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}
	users, err := h.Store.ListUsers(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, users, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListManagers(w http.ResponseWriter, r *http.Request) {
	managers, err := h.Store.ListManagers(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list managers", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, managers, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload identity.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	v.Enum("role", payload.Role, identity.Roles(), "unknown role")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	user, err := h.Service.CreateUser(r.Context(), payload)
	if err != nil {
		var verr *identity.ValidationError
		if errors.As(err, &verr) {
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", verr.Message,
				map[string]any{"field": verr.Field}, middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "create_failed", "failed to create user", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "user.create", "user", user.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"email": user.Email, "role": user.Role}); err != nil {
		slog.Warn("audit user.create failed", "err", err)
	}

	api.Created(w, user, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.Store.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, user, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload struct {
		Name         string  `json:"name"`
		Role         string  `json:"role"`
		Department   string  `json:"department"`
		Position     string  `json:"position"`
		SupervisorID *string `json:"supervisorId"`
		HODID        *string `json:"hodId"`
		IsActive     *bool   `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	user, err := h.Service.UpdateUser(r.Context(), userID, identity.UpdateUserInput{
		Name:         payload.Name,
		Role:         payload.Role,
		Department:   payload.Department,
		Position:     payload.Position,
		SupervisorID: payload.SupervisorID,
		HODID:        payload.HODID,
		IsActive:     payload.IsActive,
	})
	if err != nil {
		var verr *identity.ValidationError
		switch {
		case errors.As(err, &verr):
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", verr.Message,
				map[string]any{"field": verr.Field}, middleware.GetRequestID(r.Context()))
		case errors.Is(err, identity.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update user", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "user.update", "user", userID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"role": user.Role}); err != nil {
		slog.Warn("audit user.update failed", "err", err)
	}

	api.Success(w, user, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	if err := h.Store.Deactivate(r.Context(), userID); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "deactivate_failed", "failed to deactivate user", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "user.deactivate", "user", userID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit user.deactivate failed", "err", err)
	}

	api.Success(w, map[string]string{"status": "deactivated"}, middleware.GetRequestID(r.Context()))
}
