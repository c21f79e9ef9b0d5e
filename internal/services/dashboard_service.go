package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"tpodash/internal/analytics"
	"tpodash/internal/chart"
	"tpodash/internal/config"
	"tpodash/internal/dataprocessing"
	"tpodash/internal/dataset"
	"tpodash/internal/infrastructure"
	"tpodash/internal/semester"
	"tpodash/internal/websocket"
	"tpodash/pkg/contracts/domain"
)

// DatasetStore is the file set the service reads and mutates.
type DatasetStore interface {
	Add(files ...domain.SourceFile)
	Replace(files []domain.SourceFile)
	Remove(id string) (domain.SourceFile, error)
	List(kind domain.FileKind) []domain.SourceFile
	Snapshot() dataset.Snapshot
}

// DashboardService ingests files and builds dashboard views.
type DashboardService struct {
	store     DatasetStore
	processor *dataprocessing.RecordProcessor
	events    websocket.EventPublisher
	metrics   *infrastructure.DashboardMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
	maxFiles  int
	dataDir   string
	now       func() time.Time
}

// Option configures a DashboardService.
type Option func(*DashboardService)

// WithEvents publishes dataset changes to p.
func WithEvents(p websocket.EventPublisher) Option {
	return func(s *DashboardService) { s.events = p }
}

// WithMetrics records ingestion and aggregation metrics on m.
func WithMetrics(m *infrastructure.DashboardMetrics) Option {
	return func(s *DashboardService) { s.metrics = m }
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *DashboardService) { s.tracer = t }
}

// WithMaxFiles bounds the number of files in one upload batch.
func WithMaxFiles(n int) Option {
	return func(s *DashboardService) {
		if n > 0 {
			s.maxFiles = n
		}
	}
}

// WithDataDir confines manifests and the files they name to dir. Relative
// manifest paths resolve against dir.
func WithDataDir(dir string) Option {
	return func(s *DashboardService) { s.dataDir = dir }
}

// NewDashboardService creates the service over store.
func NewDashboardService(store DatasetStore, logger *slog.Logger, opts ...Option) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DashboardService{
		store:     store,
		processor: dataprocessing.NewRecordProcessor(),
		tracer:    otel.Tracer(infrastructure.MeterName + "/services"),
		logger:    logger.With(slog.String("component", "dashboard_service")),
		maxFiles:  config.DefaultMaxUploadFiles,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddResultFiles parses competency result files and adds them to the dataset.
func (s *DashboardService) AddResultFiles(ctx context.Context, uploads []Upload) ([]domain.SourceFile, error) {
	return s.addFiles(ctx, domain.FileKindResult, uploads)
}

// AddGradeFiles parses grade files and adds them to the dataset.
func (s *DashboardService) AddGradeFiles(ctx context.Context, uploads []Upload) ([]domain.SourceFile, error) {
	return s.addFiles(ctx, domain.FileKindGrade, uploads)
}

func (s *DashboardService) addFiles(ctx context.Context, kind domain.FileKind, uploads []Upload) ([]domain.SourceFile, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.add_files",
		trace.WithAttributes(
			attribute.String("file.kind", string(kind)),
			attribute.Int("file.count", len(uploads)),
		))
	defer span.End()

	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no files provided", ErrInvalidInput)
	}
	if len(uploads) > s.maxFiles {
		return nil, fmt.Errorf("%w: %d files exceeds the limit of %d", ErrTooManyFiles, len(uploads), s.maxFiles)
	}

	files, err := s.parseAll(ctx, kind, uploads)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "Upload rejected",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.store.Add(files...)
	for _, f := range files {
		s.recordIngest(ctx, f)
		s.publish(ctx, domain.DatasetEvent{
			Type:     domain.EventFileAdded,
			FileID:   f.ID,
			FileName: f.Name,
			Kind:     f.Kind,
		})
	}
	return files, nil
}

// parseAll parses every upload concurrently. The first failure cancels the
// batch and nothing is stored.
func (s *DashboardService) parseAll(ctx context.Context, kind domain.FileKind, uploads []Upload) ([]domain.SourceFile, error) {
	files := make([]domain.SourceFile, len(uploads))
	g, gctx := errgroup.WithContext(ctx)

	for i, up := range uploads {
		i, up := i, up
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := s.parseOne(kind, up)
			if err != nil {
				return fmt.Errorf("%w %s: %w", ErrParseFailed, up.Name, err)
			}
			files[i] = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *DashboardService) parseOne(kind domain.FileKind, up Upload) (domain.SourceFile, error) {
	if up.Open == nil {
		return domain.SourceFile{}, fmt.Errorf("%w: no content", ErrInvalidInput)
	}
	rc, err := up.Open()
	if err != nil {
		return domain.SourceFile{}, err
	}
	defer rc.Close()

	rows, err := dataprocessing.Parse(up.Name, rc)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrUnsupportedFormat) {
			return domain.SourceFile{}, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
		}
		return domain.SourceFile{}, err
	}

	f := domain.SourceFile{
		ID:         uuid.New().String(),
		Name:       up.Name,
		Kind:       kind,
		RowCount:   len(rows),
		UploadedAt: s.now().UTC(),
	}
	switch kind {
	case domain.FileKindResult:
		res := s.processor.Process(rows, up.Name)
		f.Records = res.Records
		f.RowCount = len(res.Records)
		f.Unresolved = res.Unresolved
		f.FromFilename = res.FromFilename
	case domain.FileKindGrade:
		f.Rows = rows
	}
	return f, nil
}

// LoadManifest replaces the dataset with the files a local manifest names.
func (s *DashboardService) LoadManifest(ctx context.Context, path string) (FileList, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.load_manifest",
		trace.WithAttributes(attribute.String("manifest.path", path)))
	defer span.End()

	if s.dataDir != "" {
		confined, err := dataprocessing.Within(s.dataDir, path)
		if err != nil {
			return FileList{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		path = confined
	}

	m, err := dataprocessing.LoadManifest(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return FileList{}, fmt.Errorf("%w: manifest %s", ErrFileNotFound, path)
		}
		return FileList{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if s.dataDir != "" {
		if err := m.Confine(s.dataDir); err != nil {
			return FileList{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	if len(m.Results) == 0 && len(m.Grades) == 0 {
		return FileList{}, fmt.Errorf("%w: manifest lists no files", ErrInvalidInput)
	}

	results, err := s.parseAll(ctx, domain.FileKindResult, manifestUploads(m.Results))
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return FileList{}, err
	}
	grades, err := s.parseAll(ctx, domain.FileKindGrade, manifestUploads(m.Grades))
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return FileList{}, err
	}

	all := append(append([]domain.SourceFile(nil), results...), grades...)
	s.store.Replace(all)
	for _, f := range all {
		s.recordIngest(ctx, f)
	}
	s.publish(ctx, domain.DatasetEvent{Type: domain.EventReloaded})

	s.logger.InfoContext(ctx, "Manifest loaded",
		slog.String("path", path),
		slog.Int("results", len(results)),
		slog.Int("grades", len(grades)))
	return FileList{Results: results, Grades: grades}, nil
}

func manifestUploads(entries []dataprocessing.ManifestEntry) []Upload {
	uploads := make([]Upload, len(entries))
	for i, e := range entries {
		uploads[i] = Upload{Name: e.Name, Open: func() (io.ReadCloser, error) { return os.Open(e.Path) }}
	}
	return uploads
}

// RemoveFile deletes one file from the dataset.
func (s *DashboardService) RemoveFile(ctx context.Context, id string) error {
	f, err := s.store.Remove(id)
	if err != nil {
		if errors.Is(err, dataset.ErrFileNotFound) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, id)
		}
		return err
	}
	s.logger.InfoContext(ctx, "File removed",
		slog.String("file_id", f.ID),
		slog.String("file_name", f.Name))
	s.publish(ctx, domain.DatasetEvent{
		Type:     domain.EventFileRemoved,
		FileID:   f.ID,
		FileName: f.Name,
		Kind:     f.Kind,
	})
	return nil
}

// ListFiles returns the result and grade files in upload order.
func (s *DashboardService) ListFiles(ctx context.Context) FileList {
	return FileList{
		Results: s.store.List(domain.FileKindResult),
		Grades:  s.store.List(domain.FileKindGrade),
	}
}

// Overview summarizes the loaded dataset.
func (s *DashboardService) Overview(ctx context.Context) domain.Overview {
	snap := s.store.Snapshot()
	po, tpo := dataprocessing.ExtractMetrics(snap.Results)
	students := analytics.Students(snap.Results)
	semesters := analytics.Semesters(snap.Results)

	unresolved := 0
	for _, r := range snap.Results {
		if r.UnknownMajor {
			unresolved++
		}
	}

	return domain.Overview{
		ResultRows:     len(snap.Results),
		GradeRows:      len(snap.Grades),
		POColumns:      len(po),
		TPOColumns:     len(tpo),
		Departments:    analytics.Departments(snap.Results),
		Semesters:      semesters,
		Students:       len(students),
		YearOptions:    analytics.YearOptions(students),
		UnresolvedRows: unresolved,
		LatestSemester: semester.Latest(semesters),
		Version:        snap.Version,
	}
}

// DepartmentDashboard builds the department bar, radar and growth charts for
// TPO and PO.
func (s *DashboardService) DepartmentDashboard(ctx context.Context, q DepartmentQuery) (*DepartmentView, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.departments",
		trace.WithAttributes(attribute.String("semester", q.Semester)))
	defer span.End()
	start := time.Now()

	snap := s.store.Snapshot()
	if len(snap.Results) == 0 {
		return nil, ErrNoResultData
	}
	records := snap.Results
	po, tpo := dataprocessing.ExtractMetrics(records)
	all := analytics.Departments(records)
	selected := selectDepartments(all, q.Depts)

	// Every department gets its slot up front so a series keeps its color
	// whatever the selection.
	palette := chart.NewPalette()
	for _, d := range all {
		palette.Slot(d)
	}

	view := &DepartmentView{
		Departments: all,
		Selected:    selected,
		Semesters:   analytics.Semesters(records),
		Semester:    q.Semester,
		Colors:      palette.Assignments(),
		Charts: []chart.Chart{
			chart.Build(palette, TableDepartmentsTPO, "TPO 지표 비교", chart.KindBar, chart.ScoreDomain,
				analytics.ByDepartment(records, tpo, q.Semester), selected),
			chart.Build(palette, TableDepartmentsPO, "PO 지표 비교", chart.KindBar, chart.ScoreDomain,
				analytics.ByDepartment(records, po, q.Semester), selected),
			chart.Build(palette, TableRadarTPO, "TPO 레이더", chart.KindRadar, chart.FullDomain,
				analytics.Radar(records, tpo, selected, q.Semester), selected),
			chart.Build(palette, TableRadarPO, "PO 레이더", chart.KindRadar, chart.FullDomain,
				analytics.Radar(records, po, selected, q.Semester), selected),
			chart.Build(palette, TableGrowthTPO, "TPO 성장", chart.KindLine, chart.ScoreDomain,
				analytics.DepartmentTimeSeries(records, tpo, selected), selected),
			chart.Build(palette, TableGrowthPO, "PO 성장", chart.KindLine, chart.ScoreDomain,
				analytics.DepartmentTimeSeries(records, po, selected), selected),
		},
	}

	s.recordAggregation(ctx, "departments", start)
	return view, nil
}

// selectDepartments keeps the requested departments that exist, in request
// order; with none it falls back to the first three.
func selectDepartments(all, requested []string) []string {
	if len(requested) == 0 {
		return analytics.DefaultDepartments(all)
	}
	known := make(map[string]bool, len(all))
	for _, d := range all {
		known[d] = true
	}
	out := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, d := range requested {
		if known[d] && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// StudentDashboard builds the filtered student list and, for the selected
// students, bar charts for the active semester plus growth charts.
func (s *DashboardService) StudentDashboard(ctx context.Context, q StudentQuery) (*StudentView, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.students",
		trace.WithAttributes(attribute.Int("students.selected", len(q.Students))))
	defer span.End()
	start := time.Now()

	snap := s.store.Snapshot()
	if len(snap.Results) == 0 {
		return nil, ErrNoResultData
	}
	records := snap.Results
	po, tpo := dataprocessing.ExtractMetrics(records)
	gpa := analytics.BuildGPAIndex(snap.Grades)

	all := analytics.Students(records)
	ids := analytics.FilterStudents(records, all, gpa, analytics.StudentFilter{
		Depts:   q.Depts,
		Buckets: q.Buckets,
		Years:   q.Years,
	})
	ids = analytics.SearchStudents(ids, q.Search)

	options := make([]StudentOption, len(ids))
	for i, id := range ids {
		g, _ := gpa.Lookup(id)
		options[i] = StudentOption{ID: id, GPA: g, Bucket: analytics.BucketFor(g)}
	}

	selected := knownStudents(all, q.Students)
	active := q.Semester
	if active == "" {
		active = semester.Latest(analytics.Semesters(records))
	}

	palette := chart.NewPalette()
	for _, id := range selected {
		palette.Slot(id)
	}

	view := &StudentView{
		Students:       options,
		YearOptions:    analytics.YearOptions(all),
		Selected:       selected,
		ActiveSemester: active,
		GradesLoaded:   len(snap.Grades) > 0,
		Colors:         palette.Assignments(),
		Charts: []chart.Chart{
			chart.Build(palette, TableStudentsTPO, "학생별 TPO 지표", chart.KindBar, chart.FullDomain,
				analytics.StudentSnapshot(records, tpo, selected, active), selected),
			chart.Build(palette, TableStudentsPO, "학생별 PO 지표", chart.KindBar, chart.FullDomain,
				analytics.StudentSnapshot(records, po, selected, active), selected),
			chart.Build(palette, TableStudentGrowthTPO, "학생별 TPO 성장", chart.KindLine, chart.FullDomain,
				analytics.StudentTimeSeries(records, tpo, selected), selected),
			chart.Build(palette, TableStudentGrowthPO, "학생별 PO 성장", chart.KindLine, chart.FullDomain,
				analytics.StudentTimeSeries(records, po, selected), selected),
		},
	}

	s.recordAggregation(ctx, "students", start)
	return view, nil
}

func knownStudents(all, requested []string) []string {
	known := make(map[string]bool, len(all))
	for _, id := range all {
		known[id] = true
	}
	out := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, id := range requested {
		if known[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ExportTable computes one named aggregate table for CSV export.
func (s *DashboardService) ExportTable(ctx context.Context, name string, q ExportQuery) (domain.Table, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.export",
		trace.WithAttributes(attribute.String("table", name)))
	defer span.End()
	start := time.Now()

	snap := s.store.Snapshot()
	if len(snap.Results) == 0 {
		return domain.Table{}, ErrNoResultData
	}
	records := snap.Results
	po, tpo := dataprocessing.ExtractMetrics(records)
	depts := selectDepartments(analytics.Departments(records), q.Depts)
	students := knownStudents(analytics.Students(records), q.Students)

	var table domain.Table
	switch name {
	case TableDepartmentsTPO:
		table = analytics.ByDepartment(records, tpo, q.Semester)
	case TableDepartmentsPO:
		table = analytics.ByDepartment(records, po, q.Semester)
	case TableRadarTPO:
		table = analytics.Radar(records, tpo, depts, q.Semester)
	case TableRadarPO:
		table = analytics.Radar(records, po, depts, q.Semester)
	case TableGrowthTPO:
		table = analytics.DepartmentTimeSeries(records, tpo, depts)
	case TableGrowthPO:
		table = analytics.DepartmentTimeSeries(records, po, depts)
	case TableStudentsTPO, TableStudentsPO:
		active := q.Semester
		if active == "" {
			active = semester.Latest(analytics.Semesters(records))
		}
		cols := tpo
		if name == TableStudentsPO {
			cols = po
		}
		table = analytics.StudentSnapshot(records, cols, students, active)
	case TableStudentGrowthTPO:
		table = analytics.StudentTimeSeries(records, tpo, students)
	case TableStudentGrowthPO:
		table = analytics.StudentTimeSeries(records, po, students)
	default:
		return domain.Table{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}

	s.recordAggregation(ctx, "export", start)
	return table, nil
}

func (s *DashboardService) recordIngest(ctx context.Context, f domain.SourceFile) {
	s.metrics.RecordIngest(ctx, string(f.Kind), f.RowCount, f.Unresolved)
	attrs := []any{
		slog.String("file_id", f.ID),
		slog.String("file_name", f.Name),
		slog.String("kind", string(f.Kind)),
		slog.Int("rows", f.RowCount),
	}
	if f.Unresolved > 0 {
		s.logger.WarnContext(ctx, "File ingested with unresolved departments",
			append(attrs, slog.Int("unresolved", f.Unresolved))...)
		return
	}
	s.logger.InfoContext(ctx, "File ingested", attrs...)
}

func (s *DashboardService) recordAggregation(ctx context.Context, view string, start time.Time) {
	d := time.Since(start)
	s.metrics.RecordAggregation(ctx, view, d)
	s.logger.DebugContext(ctx, "View built",
		slog.String("view", view),
		slog.Duration("duration", d))
}

func (s *DashboardService) publish(ctx context.Context, event domain.DatasetEvent) {
	if s.events == nil {
		return
	}
	event.Timestamp = s.now().UTC()
	s.events.PublishEvent(ctx, event)
}
