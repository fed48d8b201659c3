package game

import (
	"fmt"
)

// Action is the closed set of action kinds the client reasons about.
//
// ActionPrompt stands for any server-driven multi-step prompt the client has
// no dedicated handling for (claiming a spell, placing rooms, ...). The raw
// wire name of such a prompt is kept on GameState so it can be echoed back.
type Action int

const (
	ActionNone Action = iota
	ActionBless
	ActionMove
	ActionDrop
	ActionPickUp
	ActionCastSpell
	ActionEndTurn
	ActionResetTurn
	ActionStart
	ActionMaybeEndGame
	ActionPlacePlayers
	ActionPrompt
)

var actionNames = [...]string{
	ActionNone:         "none",
	ActionBless:        "bless",
	ActionMove:         "move",
	ActionDrop:         "drop",
	ActionPickUp:       "pick up",
	ActionCastSpell:    "cast spell",
	ActionEndTurn:      "end turn",
	ActionResetTurn:    "reset turn",
	ActionStart:        "start",
	ActionMaybeEndGame: "maybe end game",
	ActionPlacePlayers: "place players",
	ActionPrompt:       "prompt",
}

// String returns the wire name of the action.
func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction maps a wire name to an Action. Names the client does not know
// resolve to ActionPrompt; the empty string resolves to ActionNone.
func ParseAction(s string) Action {
	if s == "" {
		return ActionNone
	}
	for i, name := range actionNames {
		if Action(i) == ActionPrompt {
			continue
		}
		if name == s {
			return Action(i)
		}
	}
	return ActionPrompt
}

// TakesTarget reports whether the action waits for a hex or spell selection.
func (a Action) TakesTarget() bool {
	switch a {
	case ActionMove, ActionDrop, ActionPickUp, ActionCastSpell, ActionPlacePlayers:
		return true
	default:
		return false
	}
}
