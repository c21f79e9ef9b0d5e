package http

import (
	"context"

	"tpodash/internal/services"
	"tpodash/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers use
type DashboardServiceInterface interface {
	AddResultFiles(ctx context.Context, uploads []services.Upload) ([]domain.SourceFile, error)
	AddGradeFiles(ctx context.Context, uploads []services.Upload) ([]domain.SourceFile, error)
	RemoveFile(ctx context.Context, id string) error
	ListFiles(ctx context.Context) services.FileList
	LoadManifest(ctx context.Context, path string) (services.FileList, error)

	Overview(ctx context.Context) domain.Overview
	DepartmentDashboard(ctx context.Context, q services.DepartmentQuery) (*services.DepartmentView, error)
	StudentDashboard(ctx context.Context, q services.StudentQuery) (*services.StudentView, error)
	ExportTable(ctx context.Context, name string, q services.ExportQuery) (domain.Table, error)
}

// Validator validates decoded request structs
type Validator interface {
	ValidateStruct(v interface{}) error
}
