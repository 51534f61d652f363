package models

// Reserved names for the accounting heats. They hold bookkeeping results for
// competitors who never play a heat in the round.
const (
	ByeHeatName     = "Byes"
	ScratchHeatName = "Scratched"
)

// HeatResult is one competitor's outcome within a heat.
type HeatResult struct {
	// ResultID is the stable identifier reused for the packet emitted when
	// the heat is saved, so re-saving a heat overwrites rather than
	// duplicates the server-side score.
	ResultID string         `json:"result_id,omitempty"`
	Advance  bool           `json:"advance"`
	Notes    string         `json:"notes,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// Heat is a sub-contest within a round: a fixed team list plus results.
type Heat struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Teams []string `json:"teams"`
	// Results maps entity id to its outcome. Entries may exist before the
	// heat is complete (quick toggles on a pending heat).
	Results map[string]*HeatResult `json:"results"`
	// Complete is monotonic: once a heat is saved it never reopens, though
	// advancement toggles stay legal until the round is superseded.
	Complete bool `json:"complete"`
}

// Round holds the competitors of one elimination stage, split between the
// holding pool and the heats they have been assigned to.
type Round struct {
	Name  string   `json:"name"`
	Pool  []string `json:"pool"`
	Heats []*Heat  `json:"heats"`
	// IsFinalRound is tri-state: nil means the operator has not decided,
	// which the advance logic treats as "continue" unless a single winner
	// remains.
	IsFinalRound *bool `json:"isFinalRound,omitempty"`
}

// Assigned returns every competitor placed in this round, pool and heats
// combined. With the partition invariant intact the result has no duplicates.
func (r *Round) Assigned() map[string]bool {
	set := make(map[string]bool, len(r.Pool))
	for _, id := range r.Pool {
		set[id] = true
	}
	for _, h := range r.Heats {
		for _, id := range h.Teams {
			set[id] = true
		}
	}
	return set
}

// HeatByID finds a heat within the round.
func (r *Round) HeatByID(id string) *Heat {
	for _, h := range r.Heats {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// BracketState is the full tournament record for one station. Rounds are
// append-only; only the last round is ever mutated.
type BracketState struct {
	Rounds []*Round `json:"rounds"`
}

// Current returns the active round, the only one operations may touch.
func (b *BracketState) Current() *Round {
	if len(b.Rounds) == 0 {
		return nil
	}
	return b.Rounds[len(b.Rounds)-1]
}
