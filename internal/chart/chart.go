package chart

import "tpodash/pkg/contracts/domain"

// Kind is the chart type the rendering layer should draw.
type Kind string

const (
	KindBar   Kind = "bar"
	KindLine  Kind = "line"
	KindRadar Kind = "radar"
)

// Domain is the fixed value-axis range of a chart.
type Domain [2]float64

var (
	// ScoreDomain is used by department bar and growth charts.
	ScoreDomain = Domain{40, 100}
	// FullDomain is used by radar and student charts.
	FullDomain = Domain{0, 100}
)

// Series is one drawn series with its assigned color.
type Series struct {
	Key   string `json:"key"`
	Color string `json:"color"`
}

// Chart is the payload for one chart.
type Chart struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Kind   Kind         `json:"kind"`
	Domain Domain       `json:"domain"`
	Series []Series     `json:"series"`
	Data   domain.Table `json:"data"`
	Empty  bool         `json:"empty"`
}

// Build wraps a table. Series are drawn in the order of shown; colors come from p.
func Build(p *Palette, id, title string, kind Kind, dom Domain, table domain.Table, shown []string) Chart {
	series := make([]Series, 0, len(shown))
	for _, k := range shown {
		series = append(series, Series{Key: k, Color: p.Color(k)})
	}
	return Chart{
		ID:     id,
		Title:  title,
		Kind:   kind,
		Domain: dom,
		Series: series,
		Data:   table,
		Empty:  table.Empty(),
	}
}
