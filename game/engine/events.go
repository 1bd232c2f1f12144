package engine

import "fmt"

// EventType names a notification emitted by the engine
type EventType string

const (
	EventStart  EventType = "start"
	EventMove   EventType = "move"
	EventStatus EventType = "status"
	EventWon    EventType = "won"
	EventLost   EventType = "lost"
	EventLoad   EventType = "load"
)

// Event is emitted after every change of position, score or status
type Event struct {
	Type      EventType `json:"type"`
	Position  Position  `json:"position"`
	Score     int       `json:"score"`
	BestScore int       `json:"best_score"`
	MoveCount int       `json:"move_count"`
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
}

// Listener receives engine events synchronously
type Listener func(Event)

func newEvent(t EventType, state *GameState) Event {
	ev := Event{
		Type:      t,
		Position:  state.PlayerPos,
		Score:     state.PlayerScore,
		BestScore: state.BestScore,
		MoveCount: state.MoveCount,
		Status:    state.Status,
	}

	switch t {
	case EventStart:
		ev.Message = fmt.Sprintf("Game started! Reach %s with a score of at most %d", state.Grid.Goal(), state.BestScore)
	case EventWon:
		ev.Message = fmt.Sprintf("Congratulations! You won with a score of %d!", state.PlayerScore)
	case EventLost:
		ev.Message = fmt.Sprintf("You lost with a score of %d. The best score was %d.", state.PlayerScore, state.BestScore)
	case EventLoad:
		ev.Message = "Game loaded"
	}

	return ev
}
