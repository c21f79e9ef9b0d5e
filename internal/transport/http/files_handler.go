package http

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "tpodash/internal/errors"
	"tpodash/internal/services"
	"tpodash/pkg/contracts/domain"
)

const (
	uploadField      = "files"
	multipartMemory  = 32 << 20
	defaultMaxUpload = 64 << 20
)

// FilesHandler manages the result and grade file sets
type FilesHandler struct {
	service      DashboardServiceInterface
	validator    Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBytes     int64
}

// NewFilesHandler creates a files handler. maxBytes bounds one multipart body.
func NewFilesHandler(service DashboardServiceInterface, validator Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxBytes int64) *FilesHandler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUpload
	}
	return &FilesHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "files_handler")),
		errorHandler: errorHandler,
		maxBytes:     maxBytes,
	}
}

// Routes returns the file routes
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListFiles)
	r.Post("/results", h.UploadResults)
	r.Post("/grades", h.UploadGrades)
	r.Delete("/{id}", h.DeleteFile)
	return r
}

type uploadName struct {
	Filename string `json:"filename" validate:"required,filename"`
}

type fileIDParam struct {
	ID string `json:"id" validate:"required,uuid"`
}

// ManifestRequest is the body of POST /api/v1/manifest
type ManifestRequest struct {
	Path string `json:"path" validate:"required,max=4096"`
}

// Bind implements render.Binder
func (m *ManifestRequest) Bind(r *http.Request) error {
	return nil
}

// ListFiles handles GET /api/v1/files
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.ListFiles(r.Context()),
	})
}

// UploadResults handles POST /api/v1/files/results
func (h *FilesHandler) UploadResults(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, domain.FileKindResult)
}

// UploadGrades handles POST /api/v1/files/grades
func (h *FilesHandler) UploadGrades(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, domain.FileKindGrade)
}

func (h *FilesHandler) upload(w http.ResponseWriter, r *http.Request, kind domain.FileKind) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if !errors.As(err, &maxBytes) {
			err = apierrors.InvalidRequestWithError(err)
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(uploadField, "at least one file is required"))
		return
	}

	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		if err := h.validator.ValidateStruct(uploadName{Filename: fh.Filename}); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		uploads = append(uploads, services.Upload{Name: fh.Filename, Open: opener(fh)})
	}

	h.logger.InfoContext(r.Context(), "uploading files",
		slog.String("request_id", reqID),
		slog.String("kind", string(kind)),
		slog.Int("count", len(uploads)),
	)

	var (
		files []domain.SourceFile
		err   error
	)
	if kind == domain.FileKindGrade {
		files, err = h.service.AddGradeFiles(r.Context(), uploads)
	} else {
		files, err = h.service.AddResultFiles(r.Context(), uploads)
	}
	if err != nil {
		h.logger.WarnContext(r.Context(), "upload rejected",
			slog.String("request_id", reqID),
			slog.String("error", err.Error()),
		)
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"files": files,
			"count": len(files),
		},
	})
}

func opener(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}

// DeleteFile handles DELETE /api/v1/files/{id}
func (h *FilesHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.validator.ValidateStruct(fileIDParam{ID: id}); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if err := h.service.RemoveFile(r.Context(), id); err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadManifest handles POST /api/v1/manifest
func (h *FilesHandler) LoadManifest(w http.ResponseWriter, r *http.Request) {
	var req ManifestRequest
	if err := render.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	files, err := h.service.LoadManifest(r.Context(), req.Path)
	if err != nil {
		h.logger.WarnContext(r.Context(), "manifest load failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("path", req.Path),
			slog.String("error", err.Error()),
		)
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   files,
	})
}
