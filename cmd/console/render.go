package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/piously-console/internal/controller"
	"github.com/jwebster45206/piously-console/internal/input"
	"github.com/jwebster45206/piously-console/pkg/board"
	"github.com/jwebster45206/piously-console/pkg/game"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	activeSyncStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	pausedSyncStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	enabledHintStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255"))

	disabledHintStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Strikethrough(true)

	selectedSpellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	tappedSpellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

var titleCaser = cases.Title(language.English)

// palette maps the server's color names onto terminal colors.
var palette = map[string]lipgloss.Color{
	"light":  "230",
	"dark":   "54",
	"red":    "160",
	"orange": "208",
	"yellow": "220",
	"green":  "34",
	"blue":   "33",
	"purple": "93",
	"pink":   "205",
	"cyan":   "44",
	"brown":  "94",
	"white":  "255",
	"black":  "16",
	"gray":   "245",
	"grey":   "245",
	"temp":   "238",
}

func colorFor(name string) lipgloss.Color {
	if c, ok := palette[strings.ToLower(name)]; ok {
		return c
	}
	if strings.HasPrefix(name, "#") {
		return lipgloss.Color(name)
	}
	return lipgloss.Color("245")
}

// actionLabel is how an action is shown to the player: "Pick Up".
func actionLabel(name string) string {
	return titleCaser.String(name)
}

// statusText renders the turn banner, e.g. "Light's Turn · 2 actions".
func statusText(st controller.StatusView) string {
	switch {
	case st.GameOver:
		return "Game over"
	case st.CurrentPlayer == "":
		return "Waiting for players"
	}

	text := fmt.Sprintf("%s's Turn", st.CurrentPlayer)
	if st.ActionsLeft != nil {
		if *st.ActionsLeft == 1 {
			text += " · 1 action"
		} else {
			text += fmt.Sprintf(" · %d actions", *st.ActionsLeft)
		}
	}
	return text
}

// turnHint tells the player whether the next move is theirs.
func turnHint(p game.Phase) string {
	switch p {
	case game.PhaseIdleMine:
		return "your move"
	case game.PhaseIdleWaiting:
		return "waiting for opponent"
	default:
		return ""
	}
}

// actionHints renders the key bindings, dimming the ones that would be
// ignored right now.
func actionHints(r *input.Router, st controller.StatusView) string {
	if st.GameOver {
		return enabledHintStyle.Render("Start new game (n)")
	}

	mine := st.CurrentPlayer == "" || st.MyTurn
	hints := make([]string, 0, len(input.DefaultKeys))
	for _, b := range r.Bindings() {
		enabled := mine && st.ActionsOn
		label := actionLabel(b.Action.String())
		switch b.Action {
		case game.ActionResetTurn:
			enabled = mine && (st.ActionsOn || st.ResetOn)
		case game.ActionMaybeEndGame:
			enabled = mine
			label = "Quit Game"
		}

		hint := fmt.Sprintf("%s (%s)", label, b.Key)
		if enabled {
			hints = append(hints, enabledHintStyle.Render(hint))
		} else {
			hints = append(hints, disabledHintStyle.Render(hint))
		}
	}
	return strings.Join(hints, "  ")
}

// hexToken draws one hex as three cells: aura brackets around the occupant
// or the room's initial.
func hexToken(h game.Hex, hovered, dim bool) string {
	left, right := " ", " "
	if h.AuraColor != "" {
		aura := lipgloss.NewStyle().Foreground(colorFor(h.AuraColor)).Bold(true)
		left, right = aura.Render("("), aura.Render(")")
	}

	mid := " "
	style := lipgloss.NewStyle().Background(colorFor(h.RoomColor))
	switch {
	case h.Occupant != nil && h.Occupant.Kind == game.OccupantPlayer:
		mid = "@"
		style = style.Foreground(colorFor(h.Occupant.Color)).Bold(true)
	case h.Occupant != nil && h.Occupant.Kind == game.OccupantArtwork:
		mid = strings.ToUpper(firstRune(h.Occupant.Color))
		style = style.Foreground(colorFor(h.Occupant.Color))
	case h.Room != "":
		mid = firstRune(h.Room)
		style = style.Foreground(lipgloss.Color("0"))
	}
	if hovered {
		style = style.Reverse(true)
	}
	if dim {
		style = style.Faint(true)
	}

	bg := lipgloss.NewStyle().Background(colorFor(h.RoomColor))
	return bg.Render(left) + style.Render(mid) + bg.Render(right)
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return " "
}

// boardGrid projects and rasters the hexes for a cols x rows panel.
func boardGrid(hexes []game.Hex, scale board.Scale, cols, rows int) (board.Layout, []board.Cell) {
	l := board.Project(hexes, scale.Float())
	return l, board.Raster(l, cols, rows)
}

// hoverIndex finds the hovered hex in the layout, or -1.
func hoverIndex(l board.Layout, at *hexRef) int {
	if at == nil {
		return -1
	}
	for i, p := range l.Hexes {
		if p.Hex.X == at.X && p.Hex.Y == at.Y {
			return i
		}
	}
	return -1
}

// renderBoard draws the board into a cols x rows block. hover is the index
// of the hovered hex in the layout, or -1.
func renderBoard(l board.Layout, cells []board.Cell, cols, rows, hover int, targeting bool) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}

	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}

	for _, cell := range cells {
		h := l.Hexes[cell.Index].Hex
		token := hexToken(h, cell.Index == hover, targeting && !h.Active)
		// The token spans three columns centered on the cell.
		start := cell.Col - 1
		if start < 0 || start+3 > cols {
			continue
		}
		if grid[cell.Row][start] != " " || grid[cell.Row][start+1] != " " || grid[cell.Row][start+2] != " " {
			continue
		}
		grid[cell.Row][start] = token
		grid[cell.Row][start+1] = ""
		grid[cell.Row][start+2] = ""
	}

	lines := make([]string, rows)
	for r, row := range grid {
		lines[r] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}

// renderSpells lists spells one per line so a click row maps to an index.
func renderSpells(sv controller.SpellView, hover int, width int) string {
	if len(sv.Spells) == 0 {
		return promptStyle.Render("No spells yet")
	}

	lines := make([]string, len(sv.Spells))
	for i, s := range sv.Spells {
		owner := "unclaimed"
		if s.Faction != "" {
			owner = string(s.Faction)
		}
		line := fmt.Sprintf("%s [%s]", s.Name, owner)
		if s.Tapped {
			line += " tapped"
		}
		if width > 0 && lipgloss.Width(line) > width {
			line = line[:max(width-1, 0)] + "…"
		}

		switch {
		case i == hover:
			lines[i] = selectedSpellStyle.Render(line)
		case s.Tapped || (sv.Casting && !s.Active):
			lines[i] = tappedSpellStyle.Render(line)
		default:
			lines[i] = line
		}
	}
	return strings.Join(lines, "\n")
}

// renderInfo stacks the hover label, any spell description, the server's
// info text and the error, wrapped to width.
func renderInfo(hoverLabel, spellText, info, errText, flash string, width int) string {
	var b strings.Builder
	if hoverLabel != "" {
		b.WriteString(promptStyle.Render(wordwrap.String(hoverLabel, width)) + "\n\n")
	}
	if spellText != "" {
		b.WriteString(wordwrap.String(spellText, width) + "\n\n")
	}
	if info != "" {
		b.WriteString(infoStyle.Render(wordwrap.String(info, width)) + "\n\n")
	}
	if errText != "" {
		b.WriteString(errorStyle.Render(wordwrap.String("Error: "+errText, width)) + "\n\n")
	}
	if flash != "" {
		b.WriteString(promptStyle.Render(flash) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func spellDetail(s game.Spell) string {
	text := titleStyle.Render(s.Name)
	if s.Description != "" {
		text += "\n" + s.Description
	}
	if s.HasArtwork && s.ArtworkUnplaced {
		text += "\n(artwork not yet placed)"
	}
	return text
}
