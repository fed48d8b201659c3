package board

import (
	"math"
)

// CellAspect is how many layout units one terminal row spans per column.
// Terminal cells are roughly twice as tall as they are wide.
const CellAspect = 0.5

// Cell is a placed hex snapped to a terminal grid.
type Cell struct {
	Col   int
	Row   int
	Index int // index into Layout.Hexes
}

// Raster snaps a layout onto a cols x rows grid centered on the layout origin.
// Cells that fall outside the grid are dropped.
func Raster(l Layout, cols, rows int) []Cell {
	cells := make([]Cell, 0, len(l.Hexes))
	for i, p := range l.Hexes {
		col := int(math.Round(p.Pos.X)) + cols/2
		row := int(math.Round(p.Pos.Y*CellAspect)) + rows/2
		if col < 0 || col >= cols || row < 0 || row >= rows {
			continue
		}
		cells = append(cells, Cell{Col: col, Row: row, Index: i})
	}
	return cells
}

// HitTest returns the cell nearest to (col, row) if it lies within the hex
// footprint, which spans scale columns either side and one row either side.
func HitTest(cells []Cell, scale float64, col, row int) (Cell, bool) {
	best := -1
	bestDist := math.MaxFloat64
	for i, c := range cells {
		dc := math.Abs(float64(c.Col - col))
		dr := math.Abs(float64(c.Row - row))
		if dc > scale || dr > 1 {
			continue
		}
		d := dc*dc + dr*dr
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Cell{}, false
	}
	return cells[best], true
}
