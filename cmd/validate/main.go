package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jwebster45206/piously-console/internal/session"
	"github.com/jwebster45206/piously-console/pkg/board"
	"github.com/jwebster45206/piously-console/pkg/game"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <state.json> [scale]\n", os.Args[0])
		os.Exit(1)
	}

	scale := board.DefaultScale
	if len(os.Args) > 2 {
		if _, err := fmt.Sscanf(os.Args[2], "%g", &scale); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid scale %q: %v\n", os.Args[2], err)
			os.Exit(1)
		}
	}

	validator := &StateValidator{out: os.Stdout}
	if err := validator.validateFile(os.Args[1], board.NewScale(scale)); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Game state is valid!")
}

// StateValidator checks a /<game_id>/json dump taken from the server.
type StateValidator struct {
	out    io.Writer
	errors []string
}

func (v *StateValidator) validateFile(filename string, scale board.Scale) error {
	_, _ = fmt.Fprintf(v.out, "Validating %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	resp, err := game.ParseResponse(data)
	if err != nil {
		return fmt.Errorf("file %s is not a JSON object: %w", filename, err)
	}
	gs, err := game.Merge(game.GameState{}, resp)
	if err != nil {
		return fmt.Errorf("file %s failed to merge: %w", filename, err)
	}

	v.errors = nil
	v.validateState(gs)
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	v.printLayout(gs, scale)
	return nil
}

func (v *StateValidator) validateState(gs game.GameState) {
	if err := game.Validate(gs); err != nil {
		v.addJoined(err)
	}

	if gs.GameID != "" {
		if err := session.ValidateGameID(gs.GameID); err != nil {
			v.errors = append(v.errors, fmt.Sprintf("  - game_id %q: %v", gs.GameID, err))
		}
	}

	if gs.CurrentPlayer != "" && gs.CurrentPlayer != game.FactionLight && gs.CurrentPlayer != game.FactionDark {
		v.errors = append(v.errors, fmt.Sprintf("  - current_player %q is not a faction", gs.CurrentPlayer))
	}

	if gs.ActionsLeft != nil && *gs.ActionsLeft < 0 {
		v.errors = append(v.errors, fmt.Sprintf("  - actions is negative: %d", *gs.ActionsLeft))
	}
}

// addJoined flattens errors.Join output into one line per problem.
func (v *StateValidator) addJoined(err error) {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			v.errors = append(v.errors, "  - "+e.Error())
		}
		return
	}
	v.errors = append(v.errors, "  - "+err.Error())
}

func (v *StateValidator) printLayout(gs game.GameState, scale board.Scale) {
	l := board.Project(gs.Hexes, scale.Float())

	_, _ = fmt.Fprintf(v.out, "Game %q: %d hexes, %d spells, action %q\n",
		gs.GameID, len(gs.Hexes), len(gs.Spells), gs.ActionWireName())
	_, _ = fmt.Fprintf(v.out, "Scale %.1f, bounds h[%.2f, %.2f] v[%.2f, %.2f], origin (%.2f, %.2f)\n",
		l.Scale, l.Bounds.HMin, l.Bounds.HMax, l.Bounds.VMin, l.Bounds.VMax, l.Origin.X, l.Origin.Y)

	rooms := make(map[string]int)
	for _, p := range l.Hexes {
		rooms[p.Hex.Room]++
	}
	names := make([]string, 0, len(rooms))
	for name := range rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(v.out, "  %-12s %d hexes\n", name, rooms[name])
	}
}
