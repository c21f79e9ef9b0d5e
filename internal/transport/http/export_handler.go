package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apierrors "tpodash/internal/errors"
	"tpodash/internal/exporter"
	"tpodash/internal/services"
)

// ExportParams are the export query parameters
type ExportParams struct {
	Table    string   `query:"table" validate:"required,max=64"`
	Semester string   `query:"semester" validate:"omitempty,max=32"`
	Depts    []string `query:"dept" validate:"max=64,dive,required,max=64"`
	Students []string `query:"student" validate:"max=64,dive,required,max=32"`
}

// ExportHandler streams aggregate tables as CSV downloads
type ExportHandler struct {
	service      DashboardServiceInterface
	exporter     *exporter.TableExporter
	validator    Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates an export handler
func NewExportHandler(service DashboardServiceInterface, tables *exporter.TableExporter, validator Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		exporter:     tables,
		validator:    validator,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{table}.csv", h.ExportCSV)
	return r
}

// ExportCSV handles GET /api/v1/export/{table}.csv
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	params := ExportParams{
		Table:    chi.URLParam(r, "table"),
		Semester: r.URL.Query().Get("semester"),
		Depts:    queryList(r, "dept"),
		Students: queryList(r, "student"),
	}
	if err := h.validator.ValidateStruct(params); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	table, err := h.service.ExportTable(r.Context(), params.Table, services.ExportQuery{
		Semester: params.Semester,
		Depts:    params.Depts,
		Students: params.Students,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", params.Table+".csv"))
	if err := h.exporter.Stream(w, table); err != nil {
		// Headers are already sent
		h.logger.ErrorContext(r.Context(), "csv stream failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("table", params.Table),
			slog.String("error", err.Error()),
		)
	}
}
