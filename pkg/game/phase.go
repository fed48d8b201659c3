package game

// Phase is where a session sits in the client's turn state machine.
type Phase int

const (
	PhaseNoGame Phase = iota
	PhaseSetup
	PhaseIdleMine
	PhaseIdleWaiting
	PhaseSelected
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseNoGame:
		return "no game"
	case PhaseSetup:
		return "setup"
	case PhaseIdleMine:
		return "idle (my turn)"
	case PhaseIdleWaiting:
		return "idle (waiting)"
	case PhaseSelected:
		return "selected"
	case PhaseGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// Phase derives the state machine position from the snapshot.
func (gs GameState) Phase() Phase {
	switch {
	case gs.GameID == "":
		return PhaseNoGame
	case gs.GameOver:
		return PhaseGameOver
	case gs.CurrentPlayer == "":
		return PhaseSetup
	case !gs.MyTurn():
		return PhaseIdleWaiting
	case !gs.ActionsOn():
		return PhaseSelected
	default:
		return PhaseIdleMine
	}
}
