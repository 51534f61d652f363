package brackets

import "errors"

// Validation failures are rejected synchronously with no state mutation; the
// UI shows them to the judge verbatim.
var (
	ErrNotEnoughTeams = errors.New("select at least 2 teams to run an event")
	ErrEmptySelection = errors.New("select teams from the pool first")
	ErrNoWinners      = errors.New("no teams marked to advance")
	ErrEmptyRoundName = errors.New("round name must not be empty")
)

// Stale-reference failures mean the caller operated on a round or heat that
// no longer exists in that form. The operation aborts with no partial
// mutation.
var (
	ErrEventNotStarted = errors.New("no bracket event is running for this station")
	ErrHeatNotFound    = errors.New("heat not found in the current round")
	ErrNotInPool       = errors.New("team is not in the current round's pool")
	ErrNotInHeat       = errors.New("team is not in the heat")
)
