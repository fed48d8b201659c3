package game

import (
	"encoding/json"
	"maps"
	"slices"
)

// Faction is one of the two competing sides. It also tags spell and aura ownership.
type Faction string

const (
	FactionLight Faction = "Light"
	FactionDark  Faction = "Dark"
)

// Factions lists both sides in display order.
var Factions = []Faction{FactionLight, FactionDark}

// TempRoom is the transient staging room. Its hexes never count toward board bounds.
const TempRoom = "Temp"

// OccupantKind is what sits on a hex.
type OccupantKind string

const (
	OccupantPlayer  OccupantKind = "player"
	OccupantArtwork OccupantKind = "artwork"
)

// Occupant is the single object a hex can hold.
type Occupant struct {
	Kind  OccupantKind
	Color string
}

// Hex is one cell of the board in axial coordinates.
type Hex struct {
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Room      string    `json:"room"`
	RoomColor string    `json:"room_color,omitempty"`
	Active    bool      `json:"active"`
	AuraColor string    `json:"aura_color,omitempty"` // empty when no aura
	Occupant  *Occupant `json:"-"`
}

// hexWire is the flat shape the server sends; the occupant is spread over two keys.
type hexWire struct {
	X         int          `json:"x"`
	Y         int          `json:"y"`
	Room      string       `json:"room"`
	RoomColor string       `json:"room_color,omitempty"`
	Active    bool         `json:"active"`
	AuraColor string       `json:"aura_color,omitempty"`
	ObjType   OccupantKind `json:"obj_type,omitempty"`
	ObjColor  string       `json:"obj_color,omitempty"`
}

func (h Hex) MarshalJSON() ([]byte, error) {
	w := hexWire{
		X:         h.X,
		Y:         h.Y,
		Room:      h.Room,
		RoomColor: h.RoomColor,
		Active:    h.Active,
		AuraColor: h.AuraColor,
	}
	if h.Occupant != nil {
		w.ObjType = h.Occupant.Kind
		w.ObjColor = h.Occupant.Color
	}
	return json.Marshal(w)
}

func (h *Hex) UnmarshalJSON(data []byte) error {
	var w hexWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*h = Hex{
		X:         w.X,
		Y:         w.Y,
		Room:      w.Room,
		RoomColor: w.RoomColor,
		Active:    w.Active,
		AuraColor: w.AuraColor,
	}
	if w.ObjType != "" {
		h.Occupant = &Occupant{Kind: w.ObjType, Color: w.ObjColor}
	}
	return nil
}

// Spell is one entry of the spell list.
type Spell struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Faction         Faction `json:"faction,omitempty"` // empty when unclaimed
	Tapped          bool    `json:"tapped"`
	HasArtwork      bool    `json:"artwork"`
	ArtworkUnplaced bool    `json:"unplaced_art"`
	Active          bool    `json:"active"`
}

// GameState is a snapshot of one session as seen by this client.
// Values are treated as immutable: Merge returns a new snapshot.
type GameState struct {
	GameID          string           `json:"game_id"`
	CurrentPlayer   Faction          `json:"current_player,omitempty"` // empty before the game starts
	CurrentAction   Action           `json:"-"`
	ActionName      string           `json:"current_action"` // raw wire name, kept for prompts
	ActionsLeft     *int             `json:"actions,omitempty"`
	ResetOn         bool             `json:"reset_on"`
	GameOver        bool             `json:"game_over"`
	EnabledFactions map[Faction]bool `json:"enabled_factions,omitempty"`
	Hexes           []Hex            `json:"hexes,omitempty"`
	Spells          []Spell          `json:"spells,omitempty"`
	Error           string           `json:"error,omitempty"`
	Info            string           `json:"info,omitempty"`
}

// NewGameState starts a session for the given factions.
func NewGameState(gameID string, factions map[Faction]bool) GameState {
	return GameState{
		GameID:          gameID,
		CurrentAction:   ActionNone,
		ActionName:      ActionNone.String(),
		EnabledFactions: maps.Clone(factions),
	}
}

// MyTurn reports whether this client may act for the current player.
func (gs GameState) MyTurn() bool {
	if gs.CurrentPlayer == "" {
		return false
	}
	return gs.EnabledFactions[gs.CurrentPlayer]
}

// ActionsOn reports whether a new action may be chosen.
func (gs GameState) ActionsOn() bool {
	return gs.CurrentAction == ActionNone
}

// WithAction returns a copy with the current action replaced.
func (gs GameState) WithAction(a Action) GameState {
	next := gs.Clone()
	next.CurrentAction = a
	next.ActionName = a.String()
	return next
}

// ActionWireName is the current_action value to echo back to the server.
func (gs GameState) ActionWireName() string {
	if gs.CurrentAction == ActionPrompt && gs.ActionName != "" {
		return gs.ActionName
	}
	return gs.CurrentAction.String()
}

// FindHex returns the hex at (x, y).
func (gs GameState) FindHex(x, y int) (Hex, bool) {
	for _, h := range gs.Hexes {
		if h.X == x && h.Y == y {
			return h, true
		}
	}
	return Hex{}, false
}

// Clone deep-copies every reference field.
func (gs GameState) Clone() GameState {
	next := gs
	next.EnabledFactions = maps.Clone(gs.EnabledFactions)
	next.Spells = slices.Clone(gs.Spells)
	if gs.ActionsLeft != nil {
		n := *gs.ActionsLeft
		next.ActionsLeft = &n
	}
	if gs.Hexes != nil {
		next.Hexes = make([]Hex, len(gs.Hexes))
		for i, h := range gs.Hexes {
			if h.Occupant != nil {
				occ := *h.Occupant
				h.Occupant = &occ
			}
			next.Hexes[i] = h
		}
	}
	return next
}
