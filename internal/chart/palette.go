// Package chart turns aggregate tables into chart payloads for the rendering
// layer: series colors, chart kind and fixed value-axis domains.
package chart

// DefaultColors is the series palette, cycled when there are more series than colors.
var DefaultColors = []string{
	"#2563EB", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#84CC16", "#F472B6", "#F97316", "#22C55E",
	"#14B8A6", "#3B82F6", "#A855F7", "#E11D48", "#65A30D",
}

// Palette assigns palette slots to series keys in order of first appearance.
// It is owned by the caller; share one value across charts that must agree on
// colors. A Palette is not safe for concurrent use.
type Palette struct {
	colors []string
	slots  map[string]int
	order  []string
}

// NewPalette returns a palette over colors, or DefaultColors when none are given.
func NewPalette(colors ...string) *Palette {
	if len(colors) == 0 {
		colors = DefaultColors
	}
	return &Palette{colors: colors, slots: make(map[string]int)}
}

// Slot returns the palette index for key, assigning the next one on first use.
func (p *Palette) Slot(key string) int {
	if slot, ok := p.slots[key]; ok {
		return slot
	}
	slot := len(p.order) % len(p.colors)
	p.slots[key] = slot
	p.order = append(p.order, key)
	return slot
}

// Color returns the color for key.
func (p *Palette) Color(key string) string {
	return p.colors[p.Slot(key)]
}

// Assignments returns key → color in order of first appearance.
func (p *Palette) Assignments() []Series {
	out := make([]Series, len(p.order))
	for i, k := range p.order {
		out[i] = Series{Key: k, Color: p.colors[p.slots[k]]}
	}
	return out
}
