// Package board projects the logical hex grid onto a flat, centered layout.
package board

import (
	"math"

	"github.com/jwebster45206/piously-console/pkg/game"
)

// Point is a position in layout space.
type Point struct {
	X float64
	Y float64
}

// Bounds is the extent of the non-staging hexes.
type Bounds struct {
	HMin, HMax float64
	VMin, VMax float64
}

// Placed is one hex with its centered position.
type Placed struct {
	Hex    game.Hex
	Offset Point // uncentered
	Pos    Point // Offset minus the layout origin
}

// Layout is the result of projecting a hex list at a given scale.
type Layout struct {
	Scale  float64
	Bounds Bounds
	Origin Point
	Hexes  []Placed
}

// RowHeight returns H = scale * sqrt(3), the distance between hex rows.
func RowHeight(scale float64) float64 {
	return scale * math.Sqrt(3)
}

// Offset returns the uncentered position of a hex: the horizontal offset is
// 3*scale*y and the vertical offset is H*y + 2*H*x.
func Offset(h game.Hex, scale float64) Point {
	rh := RowHeight(scale)
	return Point{
		X: 3 * scale * float64(h.Y),
		Y: rh*float64(h.Y) + 2*rh*float64(h.X),
	}
}

// Project lays out hexes around the midpoint of the bounds of every hex that
// is not in the Temp room. Input order is preserved. A list without any
// bounded hex is centered on the zero point.
func Project(hexes []game.Hex, scale float64) Layout {
	layout := Layout{
		Scale: scale,
		Hexes: make([]Placed, 0, len(hexes)),
	}

	first := true
	for _, h := range hexes {
		off := Offset(h, scale)
		layout.Hexes = append(layout.Hexes, Placed{Hex: h, Offset: off})
		if h.Room == game.TempRoom {
			continue
		}
		if first {
			layout.Bounds = Bounds{HMin: off.X, HMax: off.X, VMin: off.Y, VMax: off.Y}
			first = false
			continue
		}
		layout.Bounds.HMin = math.Min(layout.Bounds.HMin, off.X)
		layout.Bounds.HMax = math.Max(layout.Bounds.HMax, off.X)
		layout.Bounds.VMin = math.Min(layout.Bounds.VMin, off.Y)
		layout.Bounds.VMax = math.Max(layout.Bounds.VMax, off.Y)
	}

	if !first {
		layout.Origin = Point{
			X: (layout.Bounds.HMin + layout.Bounds.HMax) / 2,
			Y: (layout.Bounds.VMin + layout.Bounds.VMax) / 2,
		}
	}

	for i := range layout.Hexes {
		p := &layout.Hexes[i]
		p.Pos = Point{X: p.Offset.X - layout.Origin.X, Y: p.Offset.Y - layout.Origin.Y}
	}

	return layout
}
