package game

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the structural invariants of a snapshot and returns every
// violation joined into one error.
func Validate(gs GameState) error {
	var errs []error

	seen := make(map[[2]int]bool, len(gs.Hexes))
	for _, h := range gs.Hexes {
		key := [2]int{h.X, h.Y}
		if seen[key] {
			errs = append(errs, fmt.Errorf("duplicate hex at (%d, %d)", h.X, h.Y))
		}
		seen[key] = true

		if h.Occupant != nil {
			switch h.Occupant.Kind {
			case OccupantPlayer, OccupantArtwork:
			default:
				errs = append(errs, fmt.Errorf("hex (%d, %d) has unknown occupant %q", h.X, h.Y, h.Occupant.Kind))
			}
		}
	}

	names := make(map[string]bool, len(gs.Spells))
	for i, s := range gs.Spells {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Errorf("spell %d has no name", i))
			continue
		}
		if names[s.Name] {
			errs = append(errs, fmt.Errorf("duplicate spell %q", s.Name))
		}
		names[s.Name] = true
	}

	return errors.Join(errs...)
}

// HoverLabel describes a hex the way the board's hover text does.
func HoverLabel(h Hex) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%d, %d): %s room", h.X, h.Y, h.Room)
	if h.AuraColor != "" {
		fmt.Fprintf(&b, ", %s aura", h.AuraColor)
	}
	if h.Occupant != nil {
		fmt.Fprintf(&b, ", %s %s", h.Occupant.Color, h.Occupant.Kind)
	}
	return b.String()
}
