package board

import (
	"math"
	"testing"

	"github.com/jwebster45206/piously-console/pkg/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_TwoHexesAtUnitScale(t *testing.T) {
	hexes := []game.Hex{{X: 0, Y: 0, Room: "A"}, {X: 1, Y: 0, Room: "A"}}
	sqrt3 := math.Sqrt(3)

	l := Project(hexes, 1)

	require.Len(t, l.Hexes, 2)
	assert.Equal(t, 0.0, l.Hexes[0].Offset.X)
	assert.Equal(t, 0.0, l.Hexes[1].Offset.X)
	assert.Equal(t, 0.0, l.Hexes[0].Offset.Y)
	assert.InDelta(t, 2*sqrt3, l.Hexes[1].Offset.Y, 1e-12)

	assert.Equal(t, 0.0, l.Origin.X)
	assert.InDelta(t, sqrt3, l.Origin.Y, 1e-12)

	// symmetric about the origin
	assert.InDelta(t, -sqrt3, l.Hexes[0].Pos.Y, 1e-12)
	assert.InDelta(t, sqrt3, l.Hexes[1].Pos.Y, 1e-12)
	assert.Equal(t, -l.Hexes[0].Pos.Y, l.Hexes[1].Pos.Y)
}

func TestProject_Offsets(t *testing.T) {
	tests := []struct {
		name  string
		hex   game.Hex
		scale float64
		wantH float64
		wantV float64
	}{
		{"origin", game.Hex{X: 0, Y: 0}, 2, 0, 0},
		{"y only", game.Hex{X: 0, Y: 1}, 2, 6, 2 * math.Sqrt(3)},
		{"x only", game.Hex{X: 1, Y: 0}, 2, 0, 4 * math.Sqrt(3)},
		{"negative", game.Hex{X: -1, Y: 2}, 1, 6, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off := Offset(tt.hex, tt.scale)
			assert.InDelta(t, tt.wantH, off.X, 1e-12)
			assert.InDelta(t, tt.wantV, off.Y, 1e-12)
		})
	}
}

func TestProject_IsPure(t *testing.T) {
	hexes := []game.Hex{
		{X: 0, Y: 0, Room: "A"},
		{X: 2, Y: -1, Room: "B"},
		{X: -3, Y: 4, Room: "C"},
		{X: 1, Y: 1, Room: game.TempRoom},
	}

	a := Project(hexes, 2.5)
	b := Project(hexes, 2.5)
	assert.Equal(t, a, b)

	// a different input in between leaves no trace
	_ = Project([]game.Hex{{X: 9, Y: 9}}, 4)
	c := Project(hexes, 2.5)
	assert.Equal(t, a, c)
}

func TestProject_TempHexDoesNotMoveOrigin(t *testing.T) {
	base := []game.Hex{
		{X: 0, Y: 0, Room: "A"},
		{X: 1, Y: 0, Room: "A"},
		{X: 0, Y: 1, Room: "B"},
	}
	withTemp := append([]game.Hex{{X: 10, Y: -7, Room: game.TempRoom}}, base...)

	without := Project(base, 1.5)
	with := Project(withTemp, 1.5)

	assert.Equal(t, without.Bounds, with.Bounds)
	assert.Equal(t, without.Origin, with.Origin)
	require.Len(t, with.Hexes, 4)
	assert.Equal(t, game.TempRoom, with.Hexes[0].Hex.Room)
}

func TestProject_EmptyAndTempOnly(t *testing.T) {
	empty := Project(nil, 2)
	assert.Empty(t, empty.Hexes)
	assert.Equal(t, Point{}, empty.Origin)

	tempOnly := Project([]game.Hex{{X: 3, Y: 3, Room: game.TempRoom}}, 1)
	assert.Equal(t, Point{}, tempOnly.Origin)
	assert.Equal(t, tempOnly.Hexes[0].Offset, tempOnly.Hexes[0].Pos)
}

func TestScale_Clamp(t *testing.T) {
	assert.Equal(t, Scale(MinScale), NewScale(0))
	assert.Equal(t, Scale(MaxScale), NewScale(100))
	assert.Equal(t, Scale(2.5), Scale(2).ZoomIn())
	assert.Equal(t, Scale(1.5), Scale(2).ZoomOut())
	assert.Equal(t, Scale(MaxScale), Scale(MaxScale).ZoomIn())
	assert.Equal(t, Scale(MinScale), Scale(MinScale).ZoomOut())
}

func TestRaster_AndHitTest(t *testing.T) {
	hexes := []game.Hex{{X: 0, Y: 0, Room: "A"}, {X: 0, Y: 1, Room: "A"}, {X: 40, Y: 0, Room: "A"}}
	l := Project(hexes, 2)

	cells := Raster(l, 40, 20)
	// the far hex is off-grid once the board is centered between it and the others
	for _, c := range cells {
		assert.GreaterOrEqual(t, c.Col, 0)
		assert.Less(t, c.Col, 40)
		assert.GreaterOrEqual(t, c.Row, 0)
		assert.Less(t, c.Row, 20)
	}

	small := Project(hexes[:2], 2)
	cells = Raster(small, 40, 20)
	require.Len(t, cells, 2)

	hit, ok := HitTest(cells, 2, cells[1].Col+1, cells[1].Row)
	require.True(t, ok)
	assert.Equal(t, 1, hit.Index)

	_, ok = HitTest(cells, 2, 0, 0)
	assert.False(t, ok)
}
