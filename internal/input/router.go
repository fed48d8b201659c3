// Package input turns key presses into controller commands.
package input

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/jwebster45206/piously-console/pkg/game"
)

var ErrInvalidBinding = errors.New("invalid key binding")

// Kind says what a key press should do.
type Kind int

const (
	Ignore Kind = iota
	ZoomIn
	ZoomOut
	Navigate
	SetAction
	EndGame
	RawChoice
)

func (k Kind) String() string {
	switch k {
	case Ignore:
		return "ignore"
	case ZoomIn:
		return "zoom in"
	case ZoomOut:
		return "zoom out"
	case Navigate:
		return "navigate"
	case SetAction:
		return "set action"
	case EndGame:
		return "end game"
	case RawChoice:
		return "raw choice"
	default:
		return "unknown"
	}
}

// Command is the routed form of one key press.
type Command struct {
	Kind   Kind
	Action game.Action // for SetAction
	Key    string      // for RawChoice
	// Resume is set when the key should restart a stopped auto-refresh.
	Resume bool
}

// Sends reports whether executing the command talks to the server.
func (c Command) Sends() bool {
	return c.Kind == SetAction || c.Kind == EndGame || c.Kind == RawChoice
}

// DefaultKeys binds the action table.
var DefaultKeys = map[game.Action]string{
	game.ActionBless:        "1",
	game.ActionMove:         "2",
	game.ActionDrop:         "3",
	game.ActionPickUp:       "4",
	game.ActionCastSpell:    "w",
	game.ActionEndTurn:      "e",
	game.ActionResetTurn:    "r",
	game.ActionMaybeEndGame: "Q",
}

var (
	zoomInKeys  = []string{"+", "="}
	zoomOutKeys = []string{"-", "_"}
	navKeys     = []string{"up", "down", "left", "right", " ", "pgup", "pgdown", "home", "end"}
)

// Router maps keys to commands using a binding table.
type Router struct {
	actions  map[string]game.Action
	bindings map[game.Action]string
}

// NewRouter builds a router from DefaultKeys with overrides applied. The
// overrides map action wire names ("bless", "maybe end game") to keys.
func NewRouter(overrides map[string]string) (*Router, error) {
	bindings := make(map[game.Action]string, len(DefaultKeys))
	for a, k := range DefaultKeys {
		bindings[a] = k
	}

	for name, key := range overrides {
		a := game.ParseAction(name)
		if _, ok := DefaultKeys[a]; !ok {
			return nil, fmt.Errorf("%w: %q is not a bindable action", ErrInvalidBinding, name)
		}
		if key == "" {
			return nil, fmt.Errorf("%w: empty key for %q", ErrInvalidBinding, name)
		}
		if reserved(key) {
			return nil, fmt.Errorf("%w: %q is reserved", ErrInvalidBinding, key)
		}
		bindings[a] = key
	}

	actions := make(map[string]game.Action, len(bindings))
	for a, k := range bindings {
		if other, dup := actions[k]; dup {
			return nil, fmt.Errorf("%w: %q bound to both %s and %s", ErrInvalidBinding, k, other, a)
		}
		actions[k] = a
	}

	return &Router{actions: actions, bindings: bindings}, nil
}

func reserved(key string) bool {
	return slices.Contains(zoomInKeys, key) || slices.Contains(zoomOutKeys, key) || slices.Contains(navKeys, key)
}

// Bindings lists the action table in action order.
func (r *Router) Bindings() []Binding {
	out := make([]Binding, 0, len(r.bindings))
	for a, k := range r.bindings {
		out = append(out, Binding{Key: k, Action: a})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}

type Binding struct {
	Key    string
	Action game.Action
}

// Route decides what key should do given the current snapshot. It never
// talks to the server itself.
func (r *Router) Route(key string, gs game.GameState) Command {
	active := gs.GameID != "" && !gs.GameOver

	switch {
	case slices.Contains(zoomInKeys, key):
		return Command{Kind: ZoomIn, Resume: active}
	case slices.Contains(zoomOutKeys, key):
		return Command{Kind: ZoomOut, Resume: active}
	}

	if gs.GameID == "" {
		return Command{Kind: Ignore}
	}
	if gs.GameOver {
		if slices.Contains(navKeys, key) {
			return Command{Kind: Navigate}
		}
		return Command{Kind: Ignore}
	}
	if slices.Contains(navKeys, key) {
		return Command{Kind: Navigate, Resume: true}
	}

	action, bound := r.actions[key]
	if bound && action == game.ActionMaybeEndGame {
		return Command{Kind: EndGame, Resume: true}
	}

	if gs.ActionsOn() || (gs.ResetOn && bound && action == game.ActionResetTurn) {
		if !bound {
			return Command{Kind: Ignore, Resume: true}
		}
		return Command{Kind: SetAction, Action: action, Resume: true}
	}

	return Command{Kind: RawChoice, Key: key, Resume: true}
}

// Controller is what Execute needs from the action controller.
type Controller interface {
	SetAction(ctx context.Context, a game.Action) (bool, error)
	EndGame(ctx context.Context) (bool, error)
	SubmitRawChoice(ctx context.Context, key string) (bool, error)
}

// Execute performs a routed command. It reports whether a request was sent.
func Execute(ctx context.Context, cmd Command, ctl Controller) (bool, error) {
	switch cmd.Kind {
	case SetAction:
		return ctl.SetAction(ctx, cmd.Action)
	case EndGame:
		return ctl.EndGame(ctx)
	case RawChoice:
		return ctl.SubmitRawChoice(ctx, cmd.Key)
	default:
		return false, nil
	}
}
