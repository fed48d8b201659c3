package controller

import (
	"github.com/jwebster45206/piously-console/pkg/game"
)

// BoardView is what the board widget needs.
type BoardView struct {
	Hexes         []game.Hex
	CurrentAction game.Action
	AcceptsTarget bool
}

// SpellView is what the spell list needs.
type SpellView struct {
	Spells  []game.Spell
	Casting bool
}

// StatusView is what the header and status line need.
type StatusView struct {
	GameID        string
	CurrentPlayer game.Faction
	CurrentAction string
	ActionsLeft   *int
	Phase         game.Phase
	MyTurn        bool
	ActionsOn     bool
	ResetOn       bool
	GameOver      bool
	Error         string
	Info          string
}

func (c *Controller) BoardView() BoardView {
	gs := c.State()
	return BoardView{
		Hexes:         gs.Hexes,
		CurrentAction: gs.CurrentAction,
		AcceptsTarget: gs.CurrentAction.TakesTarget() && (gs.CurrentPlayer == "" || gs.MyTurn()),
	}
}

func (c *Controller) SpellView() SpellView {
	gs := c.State()
	return SpellView{
		Spells:  gs.Spells,
		Casting: gs.CurrentAction == game.ActionCastSpell,
	}
}

func (c *Controller) StatusView() StatusView {
	gs := c.State()
	return StatusView{
		GameID:        gs.GameID,
		CurrentPlayer: gs.CurrentPlayer,
		CurrentAction: gs.ActionWireName(),
		ActionsLeft:   gs.ActionsLeft,
		Phase:         gs.Phase(),
		MyTurn:        gs.MyTurn(),
		ActionsOn:     gs.ActionsOn(),
		ResetOn:       gs.ResetOn,
		GameOver:      gs.GameOver,
		Error:         gs.Error,
		Info:          gs.Info,
	}
}
