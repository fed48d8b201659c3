// Package session validates the setup form and persists the small snapshot
// needed to rejoin a game after a restart.
package session

import (
	"errors"
	"regexp"

	"github.com/jwebster45206/piously-console/pkg/game"
)

var (
	ErrGameIDRequired = errors.New("Game ID is required")
	ErrGameIDChars    = errors.New("Game ID can only include letters and numbers")
	ErrGameIDFormat   = errors.New("Game ID must be 1-16 characters and can only include letters and numbers")
	ErrNoFaction      = errors.New("Choose at least one faction")
)

var (
	gameIDPattern = regexp.MustCompile(`^[0-9a-zA-Z]{1,16}$`)
	alnumPattern  = regexp.MustCompile(`^[0-9a-zA-Z]*$`)
)

// ValidateGameID checks a game ID as typed. The error text is shown as is.
func ValidateGameID(id string) error {
	switch {
	case gameIDPattern.MatchString(id):
		return nil
	case id == "":
		return ErrGameIDRequired
	case !alnumPattern.MatchString(id):
		return ErrGameIDChars
	default:
		return ErrGameIDFormat
	}
}

// Validate checks the whole setup form before a session starts.
func Validate(gameID string, factions map[game.Faction]bool) error {
	if err := ValidateGameID(gameID); err != nil {
		return err
	}
	for _, on := range factions {
		if on {
			return nil
		}
	}
	return ErrNoFaction
}
