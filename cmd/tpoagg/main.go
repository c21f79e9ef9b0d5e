// Command tpoagg loads competency result files and prints the department
// (and optionally student) aggregate tables to the terminal.
//
//	tpoagg [-manifest m.json] [-dir data] [-grades g.csv ...] [-semester S]
//	       [-dept D ...] [-student ID ...] [-export dir] results...
//
// With -dir every supported file of the directory is loaded; files whose name
// mentions grades or GPA are read as grade files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"tpodash/internal/config"
	"tpodash/internal/dataset"
	"tpodash/internal/department"
	"tpodash/internal/exporter"
	"tpodash/internal/files"
	"tpodash/internal/infrastructure"
	"tpodash/internal/services"
	"tpodash/pkg/contracts/domain"
)

// listFlag collects a repeatable flag; each value may be comma separated.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

type options struct {
	manifest string
	dir      string
	grades   listFlag
	semester string
	depts    listFlag
	students listFlag
	export   string
	results  []string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("tpoagg", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.manifest, "manifest", "", "JSON manifest listing result and grade files")
	fs.StringVar(&opts.dir, "dir", "", "directory of result and grade files")
	fs.Var(&opts.grades, "grades", "grade file (repeatable)")
	fs.StringVar(&opts.semester, "semester", "", "semester for the department and student tables (default: all / latest)")
	fs.Var(&opts.depts, "dept", "department to compare (repeatable, default: first three)")
	fs.Var(&opts.students, "student", "student id to compare (repeatable)")
	fs.StringVar(&opts.export, "export", "", "directory to write the printed tables as CSV")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.results = fs.Args()
	if opts.manifest == "" && opts.dir == "" && len(opts.results) == 0 {
		return opts, errors.New("no result files: pass files as arguments or use -manifest or -dir")
	}
	depts, err := canonicalDepts(opts.depts)
	if err != nil {
		return opts, err
	}
	opts.depts = depts
	return opts, nil
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Default()
	}
	// Tables go to stdout, logs to stderr
	logger := infrastructure.NewLogger(cfg.Logging, stderr)
	if cfgErr != nil {
		logger.WarnContext(ctx, "Failed to load config, using defaults",
			slog.String("error", cfgErr.Error()))
	}

	validator := files.NewFileValidator(logger)
	if err := collect(&opts, validator); err != nil {
		color.New(color.FgRed).Fprintf(stderr, "load failed: %v\n", err)
		return 1
	}

	store := dataset.NewMemoryStore()
	// Batch runs load whole directories; the upload cap is for HTTP only
	svc := services.NewDashboardService(store, logger, services.WithMaxFiles(math.MaxInt))

	if err := load(ctx, svc, opts); err != nil {
		color.New(color.FgRed).Fprintf(stderr, "load failed: %v\n", err)
		return 1
	}

	warnUnresolved(stderr, svc.ListFiles(ctx))
	printOverview(stdout, svc.Overview(ctx))

	tables := []string{
		services.TableDepartmentsTPO, services.TableDepartmentsPO,
		services.TableGrowthTPO, services.TableGrowthPO,
	}
	if len(opts.students) > 0 {
		tables = append(tables, services.TableStudentsTPO, services.TableStudentGrowthTPO)
	}

	var csv *exporter.TableExporter
	if opts.export != "" {
		if err := validator.ValidateOutputDirectory(opts.export); err != nil {
			color.New(color.FgRed).Fprintf(stderr, "export: %v\n", err)
			return 1
		}
		csv = exporter.NewTableExporter(exporter.NewCSVWriter(opts.export))
	}

	q := services.ExportQuery{Semester: opts.semester, Depts: opts.depts, Students: opts.students}
	for _, name := range tables {
		table, err := svc.ExportTable(ctx, name, q)
		if err != nil {
			color.New(color.FgRed).Fprintf(stderr, "%s: %v\n", name, err)
			return 1
		}
		printTable(stdout, name, table)

		if csv != nil {
			if err := csv.Export(name+".csv", table); err != nil {
				color.New(color.FgRed).Fprintf(stderr, "export %s: %v\n", name, err)
				return 1
			}
		}
	}

	if csv != nil {
		logger.InfoContext(ctx, "tables exported",
			slog.String("dir", opts.export),
			slog.Int("count", len(tables)))
	}
	return 0
}

// collect adds the files discovered under -dir and checks every input path.
func collect(opts *options, validator *files.FileValidator) error {
	if opts.dir != "" {
		found, err := files.NewDiscovery("").FindSourceFiles(opts.dir)
		if err != nil {
			return err
		}
		results, grades := files.Partition(found)
		opts.results = append(opts.results, results...)
		opts.grades = append(opts.grades, grades...)
	}
	if err := validator.ValidateFiles(opts.results); err != nil {
		return err
	}
	return validator.ValidateFiles(opts.grades)
}

func load(ctx context.Context, svc *services.DashboardService, opts options) error {
	if opts.manifest != "" {
		if _, err := svc.LoadManifest(ctx, opts.manifest); err != nil {
			return err
		}
	}
	if len(opts.results) > 0 {
		if _, err := svc.AddResultFiles(ctx, fileUploads(opts.results)); err != nil {
			return err
		}
	}
	if len(opts.grades) > 0 {
		if _, err := svc.AddGradeFiles(ctx, fileUploads(opts.grades)); err != nil {
			return err
		}
	}
	return nil
}

func fileUploads(paths []string) []services.Upload {
	uploads := make([]services.Upload, len(paths))
	for i, p := range paths {
		path := p
		uploads[i] = services.Upload{
			Name: filepath.Base(path),
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		}
	}
	return uploads
}

func warnUnresolved(w io.Writer, list services.FileList) {
	warn := color.New(color.FgYellow)
	for _, f := range list.Results {
		if f.Unresolved > 0 {
			warn.Fprintf(w, "warning: %s has %d rows with an unrecognized department\n", f.Name, f.Unresolved)
		}
		if f.FromFilename > 0 {
			fmt.Fprintf(w, "note: %s: %d rows take their department from the file name\n", f.Name, f.FromFilename)
		}
	}
}

// canonicalDepts maps -dept values such as "CE" onto canonical labels.
func canonicalDepts(depts []string) ([]string, error) {
	out := make([]string, 0, len(depts))
	for _, raw := range depts {
		d := raw
		if !department.IsCanonical(d) {
			d = department.Canonicalize(d)
		}
		if d == department.Unresolved {
			return nil, fmt.Errorf("unknown department %q, known: %s", raw, strings.Join(department.Labels(), ", "))
		}
		out = append(out, d)
	}
	return out, nil
}

func printOverview(w io.Writer, o domain.Overview) {
	color.New(color.FgCyan, color.Bold).Fprintln(w, "\n=== Overview ===")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Item", "Value"})
	table.Append([]string{"Result rows", fmt.Sprint(o.ResultRows)})
	table.Append([]string{"Grade rows", fmt.Sprint(o.GradeRows)})
	table.Append([]string{"PO columns", fmt.Sprint(o.POColumns)})
	table.Append([]string{"TPO columns", fmt.Sprint(o.TPOColumns)})
	table.Append([]string{"Departments", strings.Join(o.Departments, ", ")})
	table.Append([]string{"Semesters", strings.Join(o.Semesters, ", ")})
	table.Append([]string{"Students", fmt.Sprint(o.Students)})
	table.Render()
}

func printTable(w io.Writer, name string, t domain.Table) {
	color.New(color.FgYellow).Fprintf(w, "\n%s\n", name)
	if t.Empty() {
		fmt.Fprintln(w, "(no data)")
		return
	}
	headers, records := exporter.TableRecords(t)
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(records)
	table.Render()
}
