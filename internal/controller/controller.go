// Package controller owns the session's GameState, decides which intents are
// legal, and runs the request/merge cycle against the server.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jwebster45206/piously-console/internal/gateway"
	"github.com/jwebster45206/piously-console/internal/logger"
	"github.com/jwebster45206/piously-console/pkg/game"
)

// SyncControl is the part of the poll scheduler the controller drives.
type SyncControl interface {
	ResetTicks()
	Halt(err error)
	Terminate()
}

// Controller is the single write path for GameState. Every response, whether
// from a user intent or a poll, is merged through apply under one lock.
// Network calls never hold the lock; responses are last-write-wins.
type Controller struct {
	gw     gateway.Gateway
	logger *slog.Logger

	mu       sync.Mutex
	state    game.GameState
	session  uint64 // bumped whenever the session is replaced or dropped
	seq      uint64 // last sequence number handed out
	applied  uint64 // highest sequence number merged
	syncer   SyncControl
	onChange []func(game.GameState)
}

func New(gw gateway.Gateway, log *slog.Logger) *Controller {
	return &Controller{
		gw:     gw,
		logger: log,
	}
}

// AttachSync connects the scheduler that should be reset and halted.
func (c *Controller) AttachSync(s SyncControl) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncer = s
}

// OnChange registers fn to be called with the new state after every change.
func (c *Controller) OnChange(fn func(game.GameState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// State returns a copy of the current snapshot.
func (c *Controller) State() game.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

func (c *Controller) MyTurn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.MyTurn()
}

func (c *Controller) ActionsOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ActionsOn()
}

func (c *Controller) GameOver() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.GameOver
}

func (c *Controller) HasGame() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.GameID != ""
}

// ShouldPoll reports whether a background refresh is wanted right now.
func (c *Controller) ShouldPoll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.GameID != "" && !c.state.GameOver && !c.state.MyTurn()
}

func (c *Controller) Phase() game.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase()
}

// Start begins a fresh session and asks the server to create or join it.
func (c *Controller) Start(ctx context.Context, gameID string, factions map[game.Faction]bool) error {
	c.mu.Lock()
	c.state = game.NewGameState(gameID, factions).WithAction(game.ActionStart)
	c.session++
	c.applied = c.seq
	c.mu.Unlock()
	c.notify()

	return c.dispatch(ctx, intent{action: game.ActionStart, user: true})
}

// Restore rebuilds the session from a persisted snapshot without contacting
// the server. The caller usually follows up with Poll.
func (c *Controller) Restore(gameID string, factions map[game.Faction]bool) {
	c.mu.Lock()
	c.state = game.NewGameState(gameID, factions)
	c.session++
	c.applied = c.seq
	c.mu.Unlock()
	c.notify()
}

// Abandon drops the session.
func (c *Controller) Abandon() {
	c.mu.Lock()
	c.state = game.GameState{}
	c.session++
	c.applied = c.seq
	c.mu.Unlock()
	c.notify()
}

// SetAction chooses a new action. It is accepted only while no action is in
// progress, or when the action is ResetTurn and the server allows a reset.
// A rejected call sends nothing and returns false.
func (c *Controller) SetAction(ctx context.Context, a game.Action) (bool, error) {
	c.mu.Lock()
	if !c.userMayAct() || !gateOpen(c.state, a) {
		c.mu.Unlock()
		return false, nil
	}
	c.state = c.state.WithAction(a)
	c.mu.Unlock()
	c.notify()

	return true, c.dispatch(ctx, intent{action: a, user: true})
}

func gateOpen(gs game.GameState, a game.Action) bool {
	return gs.ActionsOn() || (gs.ResetOn && a == game.ActionResetTurn)
}

// EndGame asks the server to end the game (forfeit). It is not gated by
// ActionsOn, only by turn ownership.
func (c *Controller) EndGame(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if !c.userMayAct() || c.state.GameOver {
		c.mu.Unlock()
		return false, nil
	}
	c.mu.Unlock()

	return true, c.dispatch(ctx, intent{action: game.ActionMaybeEndGame, user: true})
}

// SubmitHex forwards a hex selection for an action that takes a target.
// The hex's coordinates are sent swapped: click_x is Y and click_y is X.
func (c *Controller) SubmitHex(ctx context.Context, h game.Hex) (bool, error) {
	c.mu.Lock()
	current := c.state.CurrentAction
	if !c.userMayAct() || !current.TakesTarget() {
		c.mu.Unlock()
		return false, nil
	}
	c.mu.Unlock()

	x, y := h.Y, h.X
	return true, c.dispatch(ctx, intent{action: current, user: true, clickX: &x, clickY: &y})
}

// SubmitSpell forwards a spell selection while casting.
func (c *Controller) SubmitSpell(ctx context.Context, idx int) (bool, error) {
	c.mu.Lock()
	if !c.userMayAct() || c.state.CurrentAction != game.ActionCastSpell || idx < 0 || idx >= len(c.state.Spells) {
		c.mu.Unlock()
		return false, nil
	}
	name := c.state.Spells[idx].Name
	c.mu.Unlock()

	return true, c.dispatch(ctx, intent{action: game.ActionCastSpell, user: true, spell: name, spellIdx: &idx})
}

// SubmitRawChoice forwards a keypress as a choice for a server-driven prompt.
// It does not require turn ownership: the opponent's spells can prompt us.
func (c *Controller) SubmitRawChoice(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	if c.state.GameID == "" || c.state.GameOver {
		c.mu.Unlock()
		return false, nil
	}
	c.mu.Unlock()

	return true, c.dispatch(ctx, intent{raw: true, user: true, choice: key})
}

// Poll refreshes the state on behalf of the scheduler. It bypasses turn
// ownership and does not count as user activity.
func (c *Controller) Poll(ctx context.Context) error {
	if !c.HasGame() {
		return nil
	}
	return c.dispatch(ctx, intent{action: game.ActionNone})
}

// userMayAct is the turn-ownership gate for user intents. Before the server
// names a current player, anyone in the session may act. Callers hold c.mu.
func (c *Controller) userMayAct() bool {
	if c.state.GameID == "" || c.state.GameOver {
		return false
	}
	return c.state.CurrentPlayer == "" || c.state.MyTurn()
}

type intent struct {
	action   game.Action
	raw      bool // echo the current action unchanged
	user     bool
	clickX   *int
	clickY   *int
	spell    string
	spellIdx *int
	choice   string
}

func (c *Controller) dispatch(ctx context.Context, in intent) error {
	c.mu.Lock()
	c.seq++
	req := gateway.Request{
		CurrentAction: in.action.String(),
		GameID:        c.state.GameID,
		ClickX:        in.clickX,
		ClickY:        in.clickY,
		ClickSpell:    in.spell,
		ClickSpellIdx: in.spellIdx,
		Seq:           c.seq,
	}
	if in.raw {
		req.CurrentAction = c.state.ActionWireName()
		req.ChoiceIdx = in.choice
		req.CurrentKeypress = in.choice
	}
	session := c.session
	c.mu.Unlock()

	log := logger.WithGameID(c.logger, req.GameID)
	resp, err := c.gw.DoAction(ctx, req)
	if err != nil {
		c.fail(log, session, err)
		return err
	}

	if err := c.apply(log, req.Seq, session, resp); err != nil {
		c.fail(log, session, err)
		return err
	}

	if in.user {
		if s := c.syncControl(); s != nil {
			s.ResetTicks()
		}
	}
	return nil
}

func (c *Controller) apply(log *slog.Logger, seq, session uint64, resp game.Response) error {
	c.mu.Lock()
	if c.session != session {
		// The session changed while the request was in flight.
		c.mu.Unlock()
		log.Debug("Dropping response for abandoned session", "seq", seq)
		return nil
	}
	if seq < c.applied {
		log.Warn("Applying out-of-order response", "seq", seq, "applied", c.applied)
	}
	next, err := game.Merge(c.state, resp)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to merge response: %w", err)
	}
	c.state = next
	if seq > c.applied {
		c.applied = seq
	}
	s := c.syncer
	c.mu.Unlock()

	if next.GameOver && s != nil {
		s.Terminate()
	}
	c.notify()
	return nil
}

// fail records a failed request. The server sends state along with some
// errors (game_over for a game that no longer exists), so any reply body is
// merged before the error text is set.
func (c *Controller) fail(log *slog.Logger, session uint64, err error) {
	c.mu.Lock()
	if c.session != session {
		c.mu.Unlock()
		logger.WithError(log, err).Debug("Dropping failure for abandoned session")
		return
	}

	next := c.state.Clone()
	var serr *gateway.ServerError
	if errors.As(err, &serr) && serr.Body.Keys() > 0 {
		merged, mergeErr := game.Merge(next, serr.Body)
		if mergeErr != nil {
			logger.WithError(log, mergeErr).Debug("Ignoring unreadable error reply")
		} else {
			next = merged
		}
	}
	next.Error = ErrorText(err)
	c.state = next
	s := c.syncer
	c.mu.Unlock()

	logger.WithError(log, err).Warn("Action failed, halting auto-refresh")
	if s != nil {
		if next.GameOver {
			s.Terminate()
		} else {
			s.Halt(err)
		}
	}
	c.notify()
}

// ErrorText is the message shown to the player for a failed request.
func ErrorText(err error) string {
	var serr *gateway.ServerError
	switch {
	case errors.As(err, &serr):
		if serr.Message != "" {
			return serr.Message
		}
		if line, _, _ := strings.Cut(strings.TrimSpace(serr.Backend), "\n"); line != "" {
			return line
		}
		return fmt.Sprintf("Server error (%d)", serr.Status)
	case errors.Is(err, gateway.ErrTransport):
		return "Could not reach the game server"
	default:
		return "Something went wrong talking to the server"
	}
}

func (c *Controller) syncControl() SyncControl {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncer
}

func (c *Controller) notify() {
	c.mu.Lock()
	gs := c.state.Clone()
	fns := append([]func(game.GameState){}, c.onChange...)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(gs)
	}
}
