package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"tpodash/internal/analytics"
	apierrors "tpodash/internal/errors"
	"tpodash/internal/services"
)

// ValidationRegistrar accepts custom validation tags
type ValidationRegistrar interface {
	RegisterValidation(tag string, fn validator.Func) error
}

// RegisterValidations installs the tags used by the dashboard query structs
func RegisterValidations(v ValidationRegistrar) error {
	return v.RegisterValidation("gpabucket", func(fl validator.FieldLevel) bool {
		_, ok := analytics.ParseBucket(fl.Field().String())
		return ok
	})
}

// DepartmentParams are the department view query parameters
type DepartmentParams struct {
	Semester string   `query:"semester" validate:"omitempty,max=32"`
	Depts    []string `query:"dept" validate:"max=64,dive,required,max=64"`
}

// StudentParams are the student view query parameters
type StudentParams struct {
	Depts    []string `query:"dept" validate:"max=64,dive,required,max=64"`
	Buckets  []string `query:"bucket" validate:"max=4,dive,gpabucket"`
	Years    []string `query:"year" validate:"max=32,dive,len=4,numeric"`
	Search   string   `query:"q" validate:"omitempty,max=32"`
	Students []string `query:"student" validate:"max=64,dive,required,max=32"`
	Semester string   `query:"semester" validate:"omitempty,max=32"`
}

// DashboardHandler serves the overview and the two comparison views
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validator Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/departments", h.Departments)
	r.Get("/students", h.Students)
	return r
}

// Overview handles GET /api/v1/overview
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Overview(r.Context()),
	})
}

// Departments handles GET /api/v1/dashboard/departments
func (h *DashboardHandler) Departments(w http.ResponseWriter, r *http.Request) {
	params := DepartmentParams{
		Semester: strings.TrimSpace(r.URL.Query().Get("semester")),
		Depts:    queryList(r, "dept"),
	}
	if err := h.validator.ValidateStruct(params); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.DepartmentDashboard(r.Context(), services.DepartmentQuery{
		Semester: params.Semester,
		Depts:    params.Depts,
	})
	if err != nil {
		h.logError(r, "department dashboard failed", err)
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// Students handles GET /api/v1/dashboard/students
func (h *DashboardHandler) Students(w http.ResponseWriter, r *http.Request) {
	params := StudentParams{
		Depts:    queryList(r, "dept"),
		Buckets:  queryList(r, "bucket"),
		Years:    queryList(r, "year"),
		Search:   strings.TrimSpace(r.URL.Query().Get("q")),
		Students: queryList(r, "student"),
		Semester: strings.TrimSpace(r.URL.Query().Get("semester")),
	}
	if err := h.validator.ValidateStruct(params); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	buckets := make([]analytics.Bucket, 0, len(params.Buckets))
	for _, s := range params.Buckets {
		b, _ := analytics.ParseBucket(s)
		buckets = append(buckets, b)
	}

	view, err := h.service.StudentDashboard(r.Context(), services.StudentQuery{
		Depts:    params.Depts,
		Buckets:  buckets,
		Years:    params.Years,
		Search:   params.Search,
		Students: params.Students,
		Semester: params.Semester,
	})
	if err != nil {
		h.logError(r, "student dashboard failed", err)
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

func (h *DashboardHandler) logError(r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("error", err.Error()),
	)
}

// queryList collects a multi-valued parameter given either as repeated keys or
// as a comma separated list. Blank entries are dropped.
func queryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
