package reportshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"paws/internal/domain/identity"
	"paws/internal/domain/reports"
	"paws/internal/transport/http/api"
	"paws/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
	Users   *identity.Store
}

func NewHandler(service *reports.Service, users *identity.Store) *Handler {
	return &Handler{Service: service, Users: users}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(identity.PermReportHR)).Get("/dashboard/hr", h.handleHRDashboard)
		r.With(middleware.RequirePermission(identity.PermReportHOD)).Get("/dashboard/hod", h.handleHODDashboard)
		r.With(middleware.RequirePermission(identity.PermReportSelf)).Get("/dashboard/employee", h.handleEmployeeDashboard)
	})
}

func (h *Handler) handleHRDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.Service.HRDashboard(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, dashboard, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHODDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	department := r.URL.Query().Get("department")
	if user.Role == identity.RoleHOD {
		// HODs always see their own department, whatever was asked for.
		me, err := h.Users.GetUser(r.Context(), user.UserID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build dashboard", middleware.GetRequestID(r.Context()))
			return
		}
		department = me.Department
	}

	dashboard, err := h.Service.HODDashboard(r.Context(), department, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, dashboard, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	dashboard, err := h.Service.EmployeeDashboard(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, dashboard, middleware.GetRequestID(r.Context()))
}
