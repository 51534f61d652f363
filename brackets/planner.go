package brackets

import (
	"errors"
	"fmt"
)

// HeatPlan is a proposed split of a round's pool: the heats to create plus
// the competitors who sit the round out with a bye.
type HeatPlan struct {
	Heats [][]string
	Byes  []string
}

// HeatPlanner proposes a heat assignment for a pool. Planners only propose;
// ApplyPlan performs the actual pool transfers through the engine so the
// partition invariant holds.
type HeatPlanner interface {
	Plan(pool []string) (*HeatPlan, error)
	Name() string
}

// PairPlanner matches the pool into head-to-head heats of two. An odd team
// out receives a bye.
type PairPlanner struct{}

func (PairPlanner) Name() string { return "Pairs" }

func (PairPlanner) Plan(pool []string) (*HeatPlan, error) {
	if len(pool) < 2 {
		return nil, errors.New("not enough teams in the pool to plan pairs (minimum 2)")
	}
	plan := &HeatPlan{}
	i := 0
	for ; i+1 < len(pool); i += 2 {
		plan.Heats = append(plan.Heats, []string{pool[i], pool[i+1]})
	}
	if i < len(pool) {
		plan.Byes = append(plan.Byes, pool[i])
	}
	return plan, nil
}

// GroupPlanner splits the pool into heats of at most Size teams, balancing
// so no heat ends up alone with a single competitor.
type GroupPlanner struct {
	Size int
}

func (g GroupPlanner) Name() string { return fmt.Sprintf("Groups of %d", g.Size) }

func (g GroupPlanner) Plan(pool []string) (*HeatPlan, error) {
	if g.Size < 2 {
		return nil, fmt.Errorf("group size must be at least 2, got %d", g.Size)
	}
	if len(pool) < 2 {
		return nil, errors.New("not enough teams in the pool to plan groups (minimum 2)")
	}

	n := len(pool)
	numHeats := (n + g.Size - 1) / g.Size
	base := n / numHeats
	extra := n % numHeats

	plan := &HeatPlan{}
	idx := 0
	for h := 0; h < numHeats; h++ {
		size := base
		if h < extra {
			size++
		}
		plan.Heats = append(plan.Heats, append([]string{}, pool[idx:idx+size]...))
		idx += size
	}
	return plan, nil
}

// ApplyPlan materializes a planner's proposal for the station's current
// round: one CreateHeat per planned heat, one GrantBye per leftover.
func (e *Engine) ApplyPlan(stationID string, planner HeatPlanner) (*HeatPlan, error) {
	round, err := e.currentRound(stationID)
	if err != nil {
		return nil, err
	}

	plan, err := planner.Plan(append([]string{}, round.Pool...))
	if err != nil {
		return nil, fmt.Errorf("%s planner failed: %w", planner.Name(), err)
	}

	for _, teams := range plan.Heats {
		if _, err := e.CreateHeat(stationID, teams); err != nil {
			return nil, err
		}
	}
	for _, id := range plan.Byes {
		if err := e.GrantBye(stationID, id); err != nil {
			return nil, err
		}
	}
	return plan, nil
}
