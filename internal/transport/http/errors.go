package http

import (
	"errors"
	"net/http"

	apierrors "tpodash/internal/errors"
	"tpodash/internal/services"
)

// mapServiceError turns service sentinels into API errors. Unknown errors pass
// through and become 500s.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.NewWithDetails(http.StatusUnsupportedMediaType,
			apierrors.CodeUnsupportedFormat, "Unsupported file format: use CSV, XLSX or JSON", err.Error())
	case errors.Is(err, services.ErrTooManyFiles):
		return apierrors.NewWithDetails(http.StatusBadRequest,
			apierrors.CodeTooManyFiles, "Too many files in one upload", err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.InvalidRequestWithError(err)
	case errors.Is(err, services.ErrFileNotFound):
		return apierrors.NewWithDetails(http.StatusNotFound,
			apierrors.CodeFileNotFound, "Dataset file not found", err.Error())
	case errors.Is(err, services.ErrUnknownTable):
		return apierrors.NewWithDetails(http.StatusNotFound,
			apierrors.CodeUnknownTable, "Unknown export table", services.ExportTables)
	case errors.Is(err, services.ErrNoResultData):
		return apierrors.New(http.StatusConflict,
			apierrors.CodeNoResultData, "No result files have been loaded")
	case errors.Is(err, services.ErrParseFailed):
		return apierrors.NewWithDetails(http.StatusUnprocessableEntity,
			apierrors.CodeUnprocessable, "File could not be parsed", err.Error())
	}
	return err
}
