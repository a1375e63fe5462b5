package entity

// Session is the game state owned by one client session.
type Session struct {
	ID          string     `json:"id"`
	History     []Snapshot `json:"history"`
	StepNumber  int        `json:"step_number"`
	ReverseSort bool       `json:"reverse_sort"`
}

func NewSession(id string) Session {
	return Session{
		ID:      id,
		History: []Snapshot{{}},
	}
}

// Current returns the snapshot the step pointer selects.
func (that Session) Current() Snapshot {
	return that.History[that.StepNumber]
}

// NextCell returns the mark of the player to move: X on even steps, O on odd.
func (that Session) NextCell() Cell {
	if that.StepNumber%2 == 0 {
		return CellX
	}
	return CellO
}

// HasStep reports whether step is a valid index into the history.
func (that Session) HasStep(step int) bool {
	return step >= 0 && step < len(that.History)
}

// Clone returns a copy that shares no history storage with the receiver.
func (that Session) Clone() Session {
	history := make([]Snapshot, len(that.History))
	copy(history, that.History)
	that.History = history

	return that
}
