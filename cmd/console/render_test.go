package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/piously-console/internal/controller"
	"github.com/jwebster45206/piously-console/internal/input"
	"github.com/jwebster45206/piously-console/pkg/board"
	"github.com/jwebster45206/piously-console/pkg/game"
)

func intPtr(n int) *int { return &n }

func TestStatusText(t *testing.T) {
	tests := []struct {
		name string
		st   controller.StatusView
		want string
	}{
		{"waiting", controller.StatusView{GameID: "a"}, "Waiting for players"},
		{"no count", controller.StatusView{CurrentPlayer: game.FactionDark}, "Dark's Turn"},
		{"one action", controller.StatusView{CurrentPlayer: game.FactionLight, ActionsLeft: intPtr(1)}, "Light's Turn · 1 action"},
		{"many actions", controller.StatusView{CurrentPlayer: game.FactionLight, ActionsLeft: intPtr(3)}, "Light's Turn · 3 actions"},
		{"over", controller.StatusView{CurrentPlayer: game.FactionLight, GameOver: true}, "Game over"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusText(tt.st))
		})
	}
}

func TestTurnHint(t *testing.T) {
	assert.Equal(t, "your move", turnHint(game.PhaseIdleMine))
	assert.Equal(t, "waiting for opponent", turnHint(game.PhaseIdleWaiting))
	assert.Empty(t, turnHint(game.PhaseSelected))
	assert.Empty(t, turnHint(game.PhaseGameOver))
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("160"), colorFor("Red"))
	assert.Equal(t, lipgloss.Color("#123456"), colorFor("#123456"))
	assert.Equal(t, lipgloss.Color("245"), colorFor("mauve"))
}

func TestActionLabel(t *testing.T) {
	assert.Equal(t, "Pick Up", actionLabel("pick up"))
	assert.Equal(t, "Cast Spell", actionLabel(game.ActionCastSpell.String()))
}

func TestRenderSpells_OneLinePerSpell(t *testing.T) {
	sv := controller.SpellView{Spells: []game.Spell{
		{Name: "Priestess", Faction: game.FactionLight},
		{Name: "Purify"},
		{Name: "Shift", Tapped: true},
	}}
	out := renderSpells(sv, -1, 40)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Priestess [Light]")
	assert.Contains(t, lines[1], "Purify [unclaimed]")
	assert.Contains(t, lines[2], "tapped")

	assert.Contains(t, renderSpells(controller.SpellView{}, -1, 40), "No spells yet")
}

func TestRenderBoard_Dimensions(t *testing.T) {
	hexes := []game.Hex{
		{X: 0, Y: 0, Room: "A", RoomColor: "red"},
		{X: 0, Y: 1, Room: "B", RoomColor: "blue", Occupant: &game.Occupant{Kind: game.OccupantPlayer, Color: "Light"}},
		{X: 1, Y: 0, Room: "C", AuraColor: "Dark"},
	}
	cols, rows := 40, 12
	l, cells := boardGrid(hexes, board.NewScale(2), cols, rows)
	require.Len(t, cells, 3)

	out := renderBoard(l, cells, cols, rows, -1, false)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, rows)
	for _, line := range lines {
		assert.Equal(t, cols, lipgloss.Width(line))
	}

	assert.Empty(t, renderBoard(l, cells, 0, 0, -1, false))

	assert.Equal(t, 2, hoverIndex(l, &hexRef{X: 1, Y: 0}))
	assert.Equal(t, -1, hoverIndex(l, &hexRef{X: 9, Y: 9}))
	assert.Equal(t, -1, hoverIndex(l, nil))
}

func TestActionHints(t *testing.T) {
	r, err := input.NewRouter(nil)
	require.NoError(t, err)

	over := actionHints(r, controller.StatusView{GameOver: true})
	assert.Contains(t, over, "Start new game (n)")

	st := controller.StatusView{GameID: "abc", CurrentPlayer: game.FactionLight, MyTurn: true, ActionsOn: true}
	hints := actionHints(r, st)
	for _, want := range []string{"Bless (1)", "Move (2)", "Pick Up (4)", "Cast Spell (w)", "Reset Turn (r)", "Quit Game (Q)"} {
		assert.Contains(t, hints, want)
	}
}
