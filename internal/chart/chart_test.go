package chart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tpodash/pkg/contracts/domain"
)

func TestPalette_StableAssignment(t *testing.T) {
	p := NewPalette()
	assert.Equal(t, DefaultColors[0], p.Color("a"))
	assert.Equal(t, DefaultColors[1], p.Color("b"))
	assert.Equal(t, DefaultColors[0], p.Color("a"))

	assert.Equal(t, []Series{
		{Key: "a", Color: DefaultColors[0]},
		{Key: "b", Color: DefaultColors[1]},
	}, p.Assignments())
}

func TestPalette_Cycles(t *testing.T) {
	p := NewPalette("red", "blue")
	assert.Equal(t, 0, p.Slot("x"))
	assert.Equal(t, 1, p.Slot("y"))
	assert.Equal(t, 0, p.Slot("z"))
	assert.Equal(t, "red", p.Color("z"))
}

func TestBuild(t *testing.T) {
	p := NewPalette("red", "blue")
	p.Color("seeded")

	table := domain.NewTable(domain.PivotMetric, []string{"ce", "md"})
	table.Append("PO1", map[string]*float64{"ce": domain.Float(75), "md": nil})

	c := Build(p, "dept-po", "PO by department", KindBar, ScoreDomain, table, []string{"md", "ce"})
	assert.False(t, c.Empty)
	assert.Equal(t, []Series{{Key: "md", Color: "blue"}, {Key: "ce", Color: "red"}}, c.Series)

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "bar", decoded["kind"])
	assert.Equal(t, []any{40.0, 100.0}, decoded["domain"])

	rows := decoded["data"].(map[string]any)["rows"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "PO1", row["metric"])
	assert.Equal(t, 75.0, row["ce"])
	// nil is kept as null, never zero
	v, present := row["md"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestBuild_Empty(t *testing.T) {
	c := Build(NewPalette(), "radar", "Radar", KindRadar, FullDomain, domain.NewTable(domain.PivotAxis, nil), nil)
	assert.True(t, c.Empty)
	assert.Empty(t, c.Series)
}
