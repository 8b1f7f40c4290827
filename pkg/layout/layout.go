// Package layout places flow nodes on the editor canvas.
//
// Positions are the top-left corners of nodes; y grows downwards.
package layout

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/aretw0/flowstudio/pkg/domain"
)

// Canvas defaults, in canvas units.
const (
	DefaultNodeWidth  = 250
	DefaultNodeHeight = 200
	DefaultMargin     = 30
	DefaultSamples    = 10
)

// Box is an axis-aligned rectangle.
type Box struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

func (b Box) Width() float64  { return b.XMax - b.XMin }
func (b Box) Height() float64 { return b.YMax - b.YMin }

// Expand grows the box by m on every side.
func (b Box) Expand(m float64) Box {
	return Box{XMin: b.XMin - m, XMax: b.XMax + m, YMin: b.YMin - m, YMax: b.YMax + m}
}

// Overlaps reports whether the interiors of b and o intersect. Boxes that
// only touch do not overlap.
func (b Box) Overlaps(o Box) bool {
	return b.XMin < o.XMax && o.XMin < b.XMax && b.YMin < o.YMax && o.YMin < b.YMax
}

// NodeBox returns the box of a node of size w×h at p.
func NodeBox(p domain.Position, w, h float64) Box {
	return Box{XMin: p.X, XMax: p.X + w, YMin: p.Y, YMax: p.Y + h}
}

// Positions returns the values of coords ordered by node ID.
func Positions(coords map[string]domain.Position) []domain.Position {
	ids := make([]string, 0, len(coords))
	for id := range coords {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]domain.Position, len(ids))
	for i, id := range ids {
		out[i] = coords[id]
	}
	return out
}

// BoundingBox returns the box enclosing every node of coords, each of size
// w×h. An empty map yields the zero box.
func BoundingBox(coords map[string]domain.Position, w, h float64) Box {
	return boundingBox(Positions(coords), w, h)
}

func boundingBox(positions []domain.Position, w, h float64) Box {
	if len(positions) == 0 {
		return Box{}
	}
	box := Box{XMin: math.Inf(1), XMax: math.Inf(-1), YMin: math.Inf(1), YMax: math.Inf(-1)}
	for _, p := range positions {
		box.XMin = math.Min(box.XMin, p.X)
		box.XMax = math.Max(box.XMax, p.X+w)
		box.YMin = math.Min(box.YMin, p.Y)
		box.YMax = math.Max(box.YMax, p.Y+h)
	}
	return box
}

// Offset returns a copy of coords moved by (dx, dy).
func Offset(coords map[string]domain.Position, dx, dy float64) map[string]domain.Position {
	out := make(map[string]domain.Position, len(coords))
	for id, p := range coords {
		p.X += dx
		p.Y += dy
		out[id] = p
	}
	return out
}

type placeOptions struct {
	rnd     *rand.Rand
	samples int
}

// Option configures FindNewNodePosition.
type Option func(*placeOptions)

// WithRand makes the jitter reproducible.
func WithRand(r *rand.Rand) Option {
	return func(o *placeOptions) { o.rnd = r }
}

// WithSamples sets the number of candidate columns.
func WithSamples(n int) Option {
	return func(o *placeOptions) {
		if n > 0 {
			o.samples = n
		}
	}
}

// FindNewNodePosition picks a free spot for a w×h node. Candidate columns
// are spread evenly over the horizontal extent of the existing nodes with a
// small random jitter; each column is pushed below every node it would
// touch (margin included) and the highest column wins. The result keeps at
// least margin away from every existing node. Without existing nodes the
// origin is returned.
func FindNewNodePosition(existing []domain.Position, w, h, margin float64, opts ...Option) domain.Position {
	if len(existing) == 0 {
		return domain.Position{}
	}
	o := placeOptions{samples: DefaultSamples}
	for _, opt := range opts {
		opt(&o)
	}
	jitter := func() float64 {
		if o.rnd != nil {
			return o.rnd.Float64() * margin
		}
		return rand.Float64() * margin
	}

	extent := boundingBox(existing, w, h)
	span := math.Max(extent.Width()-w, 0)

	best := domain.Position{Y: math.Inf(1)}
	for i := range o.samples {
		x := extent.XMin + jitter()
		if o.samples > 1 {
			x += span * float64(i) / float64(o.samples-1)
		}
		y := requiredY(existing, x, w, h, margin, extent.YMin)
		if y < best.Y || (y == best.Y && x < best.X) {
			best = domain.Position{X: x, Y: y}
		}
	}
	return best
}

// requiredY is the lowest y at which a w-wide column at x clears every
// existing node it overlaps horizontally.
func requiredY(existing []domain.Position, x, w, h, margin, top float64) float64 {
	y := top
	for _, p := range existing {
		if x < p.X+w+margin && p.X-margin < x+w {
			y = math.Max(y, p.Y+h+margin)
		}
	}
	return y
}

// TemplateXOffset returns the horizontal shift that moves tmpl clear of
// existing, plus margin, on whichever side is closer. Boxes that do not
// overlap vertically need no shift.
func TemplateXOffset(existing, tmpl Box, margin float64) float64 {
	if existing.YMax < tmpl.YMin || existing.YMin > tmpl.YMax {
		return 0
	}
	right := math.Max(existing.XMax-tmpl.XMin, 0)
	left := math.Max(tmpl.XMax-existing.XMin, 0)
	if right < left {
		return right + margin
	}
	return -left - margin
}
