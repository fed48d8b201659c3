package input

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/piously-console/pkg/game"
)

func idleState() game.GameState {
	gs := game.NewGameState("abc123", map[game.Faction]bool{game.FactionLight: true})
	gs.CurrentPlayer = game.FactionLight
	return gs
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	r, err := NewRouter(nil)
	require.NoError(t, err)
	return r
}

func TestRoute_ActionTable(t *testing.T) {
	r := newTestRouter(t)
	gs := idleState()

	tests := []struct {
		key  string
		want game.Action
	}{
		{"1", game.ActionBless},
		{"2", game.ActionMove},
		{"3", game.ActionDrop},
		{"4", game.ActionPickUp},
		{"w", game.ActionCastSpell},
		{"e", game.ActionEndTurn},
		{"r", game.ActionResetTurn},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cmd := r.Route(tt.key, gs)
			assert.Equal(t, SetAction, cmd.Kind)
			assert.Equal(t, tt.want, cmd.Action)
			assert.True(t, cmd.Resume)
			assert.True(t, cmd.Sends())
		})
	}

	cmd := r.Route("z", gs)
	assert.Equal(t, Ignore, cmd.Kind, "unbound keys do nothing while actions are on")
	assert.False(t, cmd.Sends())
}

func TestRoute_RawChoiceDuringPrompt(t *testing.T) {
	r := newTestRouter(t)
	gs := idleState()
	gs.CurrentPlayer = game.FactionDark
	gs.CurrentAction = game.ParseAction("choose hex")
	gs.ActionName = "choose hex"

	cmd := r.Route("5", gs)
	assert.Equal(t, Command{Kind: RawChoice, Key: "5", Resume: true}, cmd)

	cmd = r.Route("1", gs)
	assert.Equal(t, RawChoice, cmd.Kind, "table keys become choices while an action is in progress")
	assert.Equal(t, "1", cmd.Key)
}

func TestRoute_ResetDuringAction(t *testing.T) {
	r := newTestRouter(t)
	gs := idleState().WithAction(game.ActionMove)

	gs.ResetOn = true
	assert.Equal(t, Command{Kind: SetAction, Action: game.ActionResetTurn, Resume: true}, r.Route("r", gs))
	assert.Equal(t, RawChoice, r.Route("1", gs).Kind)

	gs.ResetOn = false
	assert.Equal(t, Command{Kind: RawChoice, Key: "r", Resume: true}, r.Route("r", gs))
}

func TestRoute_EndGameIsDirect(t *testing.T) {
	r := newTestRouter(t)

	for _, gs := range []game.GameState{idleState(), idleState().WithAction(game.ActionDrop)} {
		cmd := r.Route("Q", gs)
		assert.Equal(t, EndGame, cmd.Kind)
		assert.True(t, cmd.Resume)
	}
}

func TestRoute_Zoom(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name       string
		gs         game.GameState
		wantResume bool
	}{
		{"no game", game.GameState{}, false},
		{"idle", idleState(), true},
		{"mid action", idleState().WithAction(game.ActionMove), true},
		{"game over", func() game.GameState { gs := idleState(); gs.GameOver = true; return gs }(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Command{Kind: ZoomIn, Resume: tt.wantResume}, r.Route("+", tt.gs))
			assert.Equal(t, Command{Kind: ZoomOut, Resume: tt.wantResume}, r.Route("-", tt.gs))
		})
	}
}

func TestRoute_NavigationIsConsumed(t *testing.T) {
	r := newTestRouter(t)
	gs := idleState().WithAction(game.ActionMove)

	for _, key := range []string{"up", "down", "left", "right", " ", "pgup", "pgdown", "home", "end"} {
		cmd := r.Route(key, gs)
		assert.Equal(t, Navigate, cmd.Kind, key)
		assert.False(t, cmd.Sends(), key)
	}
}

func TestRoute_GameOver(t *testing.T) {
	r := newTestRouter(t)
	gs := idleState()
	gs.GameOver = true

	for _, key := range []string{"1", "r", "Q", "5"} {
		cmd := r.Route(key, gs)
		assert.Equal(t, Command{Kind: Ignore}, cmd, key)
	}
}

func TestRoute_NoGame(t *testing.T) {
	r := newTestRouter(t)
	assert.Equal(t, Command{Kind: Ignore}, r.Route("1", game.GameState{}))
}

func TestNewRouter_Overrides(t *testing.T) {
	r, err := NewRouter(map[string]string{"bless": "b", "maybe end game": "X"})
	require.NoError(t, err)

	gs := idleState()
	assert.Equal(t, game.ActionBless, r.Route("b", gs).Action)
	assert.Equal(t, Ignore, r.Route("1", gs).Kind)
	assert.Equal(t, EndGame, r.Route("X", gs).Kind)

	bindings := r.Bindings()
	require.Len(t, bindings, len(DefaultKeys))
	assert.Equal(t, Binding{Key: "b", Action: game.ActionBless}, bindings[0])
	assert.Equal(t, Binding{Key: "2", Action: game.ActionMove}, bindings[1])
}

func TestNewRouter_InvalidOverrides(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
	}{
		{"unknown action", map[string]string{"teleport": "t"}},
		{"server-only action", map[string]string{"start": "s"}},
		{"empty key", map[string]string{"bless": ""}},
		{"reserved key", map[string]string{"bless": "+"}},
		{"duplicate key", map[string]string{"bless": "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRouter(tt.overrides)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidBinding))
		})
	}
}

type mockController struct {
	actions []game.Action
	ends    int
	choices []string
}

func (m *mockController) SetAction(ctx context.Context, a game.Action) (bool, error) {
	m.actions = append(m.actions, a)
	return true, nil
}

func (m *mockController) EndGame(ctx context.Context) (bool, error) {
	m.ends++
	return true, nil
}

func (m *mockController) SubmitRawChoice(ctx context.Context, key string) (bool, error) {
	m.choices = append(m.choices, key)
	return true, nil
}

func TestExecute(t *testing.T) {
	ctl := &mockController{}
	ctx := context.Background()

	sent, err := Execute(ctx, Command{Kind: SetAction, Action: game.ActionBless}, ctl)
	require.NoError(t, err)
	assert.True(t, sent)

	_, _ = Execute(ctx, Command{Kind: EndGame}, ctl)
	_, _ = Execute(ctx, Command{Kind: RawChoice, Key: "5"}, ctl)

	sent, err = Execute(ctx, Command{Kind: ZoomIn}, ctl)
	require.NoError(t, err)
	assert.False(t, sent)

	assert.Equal(t, []game.Action{game.ActionBless}, ctl.actions)
	assert.Equal(t, 1, ctl.ends)
	assert.Equal(t, []string{"5"}, ctl.choices)
}
