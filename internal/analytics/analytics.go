// Package analytics computes the grouped means behind the competency dashboard.
//
// Every function is a pure, full recomputation over the records it is given.
// Nil values are excluded from a mean, and a group with no values reports nil,
// never zero, so the rendering layer can tell "no data" from a real score.
package analytics

import (
	"tpodash/internal/semester"
	"tpodash/pkg/contracts/domain"
)

// accumulator collects values for one mean.
type accumulator struct {
	sum   float64
	count int
}

func (a *accumulator) add(v *float64) {
	if v == nil {
		return
	}
	a.sum += *v
	a.count++
}

func (a accumulator) mean() *float64 {
	if a.count == 0 {
		return nil
	}
	m := a.sum / float64(a.count)
	return &m
}

// Mean averages the non-nil values, nil when there are none.
func Mean(values []*float64) *float64 {
	var acc accumulator
	for _, v := range values {
		acc.add(v)
	}
	return acc.mean()
}

// Semesters returns the distinct semesters of records in chronological order.
func Semesters(records []domain.Record) []string {
	labels := make([]string, len(records))
	for i, r := range records {
		labels[i] = r.Semester
	}
	return semester.Unique(labels)
}

func filterSemester(records []domain.Record, sem string) []domain.Record {
	if sem == "" {
		return records
	}
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if r.Semester == sem {
			out = append(out, r)
		}
	}
	return out
}

// ByDepartment computes, for every metric column and every department present,
// the mean over that department's rows. A non-empty semester restricts the rows;
// the department list always comes from the full record set.
func ByDepartment(records []domain.Record, cols []domain.MetricColumn, sem string) domain.Table {
	depts := Departments(records)
	table := domain.NewTable(domain.PivotMetric, depts)
	rows := filterSemester(records, sem)

	for _, col := range cols {
		name := col.Name()
		accs := make(map[string]*accumulator, len(depts))
		for _, d := range depts {
			accs[d] = &accumulator{}
		}
		for _, r := range rows {
			if acc, ok := accs[r.Dept]; ok {
				acc.add(r.Metric(name))
			}
		}
		values := make(map[string]*float64, len(depts))
		for _, d := range depts {
			values[d] = accs[d].mean()
		}
		table.Append(col.Label(), values)
	}
	return table
}

// DepartmentTimeSeries computes one mean per (semester, department) across all
// cols jointly. An empty depts selection means every department.
func DepartmentTimeSeries(records []domain.Record, cols []domain.MetricColumn, depts []string) domain.Table {
	if len(depts) == 0 {
		depts = Departments(records)
	}
	return timeSeries(records, cols, depts, func(r domain.Record) string { return r.Dept })
}

// StudentTimeSeries is DepartmentTimeSeries grouped by student id.
func StudentTimeSeries(records []domain.Record, cols []domain.MetricColumn, students []string) domain.Table {
	return timeSeries(records, cols, students, func(r domain.Record) string { return r.StudentID })
}

func timeSeries(records []domain.Record, cols []domain.MetricColumn, series []string, keyOf func(domain.Record) string) domain.Table {
	table := domain.NewTable(domain.PivotSemester, series)
	names := domain.ColumnNames(cols)

	for _, sem := range Semesters(records) {
		accs := make(map[string]*accumulator, len(series))
		for _, s := range series {
			accs[s] = &accumulator{}
		}
		for _, r := range records {
			if r.Semester != sem {
				continue
			}
			acc, ok := accs[keyOf(r)]
			if !ok {
				continue
			}
			for _, n := range names {
				acc.add(r.Metric(n))
			}
		}
		values := make(map[string]*float64, len(series))
		for _, s := range series {
			values[s] = accs[s].mean()
		}
		table.Append(sem, values)
	}
	return table
}

// Radar re-pivots the department snapshot by axis: one row per metric with one
// value per selected department. Empty depts means every department; the table
// is empty when there are no departments or no columns.
func Radar(records []domain.Record, cols []domain.MetricColumn, depts []string, sem string) domain.Table {
	if len(depts) == 0 {
		depts = Departments(records)
	}
	table := domain.NewTable(domain.PivotAxis, depts)
	if len(depts) == 0 || len(cols) == 0 {
		return table
	}

	snapshot := ByDepartment(filterSemester(records, sem), cols, "")
	for i, col := range cols {
		values := make(map[string]*float64, len(depts))
		for _, d := range depts {
			values[d] = snapshot.Rows[i].Value(d)
		}
		table.Append(col.Label(), values)
	}
	return table
}

// StudentSnapshot computes per-metric means for each student restricted to one
// semester. The table is empty when no selected student has rows in it.
func StudentSnapshot(records []domain.Record, cols []domain.MetricColumn, students []string, sem string) domain.Table {
	table := domain.NewTable(domain.PivotMetric, students)
	if len(students) == 0 {
		return table
	}

	wanted := make(map[string]bool, len(students))
	for _, s := range students {
		wanted[s] = true
	}
	var rows []domain.Record
	for _, r := range records {
		if r.Semester == sem && wanted[r.StudentID] {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return table
	}

	for _, col := range cols {
		name := col.Name()
		accs := make(map[string]*accumulator, len(students))
		for _, s := range students {
			accs[s] = &accumulator{}
		}
		for _, r := range rows {
			accs[r.StudentID].add(r.Metric(name))
		}
		values := make(map[string]*float64, len(students))
		for _, s := range students {
			values[s] = accs[s].mean()
		}
		table.Append(col.Label(), values)
	}
	return table
}
