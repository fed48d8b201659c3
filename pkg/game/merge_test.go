package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, body string) Response {
	t.Helper()
	resp, err := ParseResponse([]byte(body))
	require.NoError(t, err)
	return resp
}

func TestMerge_AbsentKeysRetainPriorValue(t *testing.T) {
	actions := 2
	prev := NewGameState("abc123", map[Faction]bool{FactionLight: true})
	prev.CurrentPlayer = FactionLight
	prev.ActionsLeft = &actions
	prev.Info = "keep me"
	prev.Hexes = []Hex{{X: 0, Y: 0, Room: "A"}}

	next, err := Merge(prev, mustParse(t, `{"current_action": "move"}`))
	require.NoError(t, err)

	assert.Equal(t, ActionMove, next.CurrentAction)
	assert.Equal(t, "move", next.ActionName)
	assert.Equal(t, FactionLight, next.CurrentPlayer)
	require.NotNil(t, next.ActionsLeft)
	assert.Equal(t, 2, *next.ActionsLeft)
	assert.Equal(t, "keep me", next.Info)
	assert.Len(t, next.Hexes, 1)

	// prev is untouched
	assert.Equal(t, ActionNone, prev.CurrentAction)
}

func TestMerge_NullClearsField(t *testing.T) {
	actions := 3
	prev := NewGameState("abc123", nil)
	prev.CurrentPlayer = FactionDark
	prev.ActionsLeft = &actions
	prev.Error = "old"

	next, err := Merge(prev, mustParse(t, `{"current_player": null, "actions": null, "error": null}`))
	require.NoError(t, err)

	assert.Equal(t, Faction(""), next.CurrentPlayer)
	assert.Nil(t, next.ActionsLeft)
	assert.Empty(t, next.Error)
}

func TestMerge_GameIDAndFactionsAreStable(t *testing.T) {
	prev := NewGameState("mine", map[Faction]bool{FactionDark: true})

	next, err := Merge(prev, mustParse(t, `{"game_id": "other", "enabled_factions": {"Light": true}}`))
	require.NoError(t, err)

	assert.Equal(t, "mine", next.GameID)
	assert.Equal(t, map[Faction]bool{FactionDark: true}, next.EnabledFactions)

	fresh, err := Merge(GameState{}, mustParse(t, `{"game_id": "new1"}`))
	require.NoError(t, err)
	assert.Equal(t, "new1", fresh.GameID)
}

func TestMerge_FullBoard(t *testing.T) {
	body := `{
		"current_player": "Dark",
		"current_action": "none",
		"actions": 3,
		"reset_on": true,
		"game_over": false,
		"hexes": [
			{"x": 0, "y": 0, "room": "P", "room_color": "P", "active": true, "aura_color": "Light"},
			{"x": 1, "y": 0, "room": "P", "obj_type": "player", "obj_color": "Dark"},
			{"x": 5, "y": 5, "room": "Temp"}
		],
		"spells": [
			{"name": "Priestess", "description": "swap", "faction": "Dark", "tapped": false, "artwork": true, "unplaced_art": true, "active": true},
			{"name": "Purify", "description": "clear", "faction": null, "tapped": true}
		],
		"info": "Dark's turn",
		"board_svg": "<ignored>"
	}`

	next, err := Merge(NewGameState("g", nil), mustParse(t, body))
	require.NoError(t, err)

	assert.Equal(t, FactionDark, next.CurrentPlayer)
	assert.Equal(t, ActionNone, next.CurrentAction)
	assert.True(t, next.ResetOn)
	require.Len(t, next.Hexes, 3)
	assert.Equal(t, "Light", next.Hexes[0].AuraColor)
	assert.Nil(t, next.Hexes[0].Occupant)
	require.NotNil(t, next.Hexes[1].Occupant)
	assert.Equal(t, Occupant{Kind: OccupantPlayer, Color: "Dark"}, *next.Hexes[1].Occupant)
	require.Len(t, next.Spells, 2)
	assert.True(t, next.Spells[0].HasArtwork)
	assert.True(t, next.Spells[0].ArtworkUnplaced)
	assert.Equal(t, Faction(""), next.Spells[1].Faction)
	assert.Equal(t, "Dark's turn", next.Info)
}

func TestMerge_UnknownActionKeepsRawName(t *testing.T) {
	next, err := Merge(NewGameState("g", nil), mustParse(t, `{"current_action": "choose spell"}`))
	require.NoError(t, err)

	assert.Equal(t, ActionPrompt, next.CurrentAction)
	assert.Equal(t, "choose spell", next.ActionWireName())
	assert.False(t, next.ActionsOn())
}

func TestMerge_InvalidFieldReturnsPrev(t *testing.T) {
	prev := NewGameState("g", nil)
	prev.Info = "before"

	got, err := Merge(prev, mustParse(t, `{"info": "after", "game_over": "yes"}`))
	assert.Error(t, err)
	assert.Equal(t, "before", got.Info)
}

func TestResponse_BackendError(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   string
		wantOK bool
	}{
		{name: "absent", body: `{}`, wantOK: false},
		{name: "null", body: `{"backend_error": null}`, wantOK: false},
		{name: "string", body: `{"backend_error": "boom"}`, want: "boom", wantOK: true},
		{name: "traceback", body: `{"backend_error": ["Traceback\n", "KeyError: x\n"]}`, want: "Traceback\nKeyError: x", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := mustParse(t, tt.body).BackendError()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResponse_NotAnObject(t *testing.T) {
	_, err := ParseResponse([]byte(`[1, 2]`))
	assert.Error(t, err)
}
