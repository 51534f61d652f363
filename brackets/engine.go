// Package brackets runs the per-station elimination tournaments: rounds with
// a holding pool, heats, byes and scratches, and advancement into the next
// round. Completing a played heat emits score packets into the mutation
// queue; everything else is local state.
package brackets

import (
	"fmt"

	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/queue"
	"github.com/coyotecrew/camporee-collator/store"
	"github.com/coyotecrew/camporee-collator/utils"
)

// StorageKey is where the per-station bracket map lives in the device store.
const StorageKey = "coyote_bracket_data"

// HeatScore is one team's entry when a heat is saved with field values.
type HeatScore struct {
	Advance bool
	Notes   string
	Fields  map[string]any
}

// Outcome is the result of an advance computation. When Finished is true the
// winners/losers are terminal and belong to the podium step; otherwise the
// caller confirms before ConfirmAdvance creates the next round.
type Outcome struct {
	Finished      bool
	Winners       []string
	Losers        []string
	NextRoundName string
}

// Engine is the bracket state machine for every station on the device. All
// mutations run on the single event-handling goroutine (the UI never
// interleaves handlers), so the engine itself carries no locks; every
// mutating operation persists the full state before returning.
type Engine struct {
	st    store.Store
	queue *queue.Queue
	ids   utils.IDGenerator
	clock utils.Clock
	judge func() models.Judge

	data map[string]*models.BracketState
}

// NewEngine loads the persisted bracket map. The judge callback supplies the
// submitter identity stamped onto emitted packets.
func NewEngine(st store.Store, q *queue.Queue, ids utils.IDGenerator, clock utils.Clock, judge func() models.Judge) (*Engine, error) {
	e := &Engine{
		st:    st,
		queue: q,
		ids:   ids,
		clock: clock,
		judge: judge,
		data:  make(map[string]*models.BracketState),
	}
	if _, err := st.Get(StorageKey, &e.data); err != nil {
		return nil, fmt.Errorf("failed to load bracket state: %w", err)
	}
	if e.data == nil {
		e.data = make(map[string]*models.BracketState)
	}
	return e, nil
}

// Active reports whether a tournament is running for the station.
func (e *Engine) Active(stationID string) bool {
	b, ok := e.data[stationID]
	return ok && len(b.Rounds) > 0
}

// State returns a deep copy of the station's bracket, for rendering.
// Mutations go through the engine's operations only.
func (e *Engine) State(stationID string) (*models.BracketState, bool) {
	b, ok := e.data[stationID]
	if !ok {
		return nil, false
	}
	return cloneState(b), true
}

// StartEvent starts a tournament with the selected competitors, or, when one
// is already running, adds the not-yet-present competitors to the current
// round's pool. Competitors already placed (in the pool or mid-heat) are
// left exactly where they sit.
func (e *Engine) StartEvent(stationID string, selected []string) ([]string, error) {
	if len(selected) < 2 {
		return nil, ErrNotEnoughTeams
	}

	b, running := e.data[stationID]
	if !running || len(b.Rounds) == 0 {
		pool := dedupe(selected)
		e.data[stationID] = &models.BracketState{
			Rounds: []*models.Round{{
				Name:  "Round 1",
				Pool:  pool,
				Heats: []*models.Heat{},
			}},
		}
		if err := e.persist(); err != nil {
			return nil, err
		}
		return pool, nil
	}

	round := b.Current()
	present := round.Assigned()
	var added []string
	for _, id := range dedupe(selected) {
		if !present[id] {
			round.Pool = append(round.Pool, id)
			present[id] = true
			added = append(added, id)
		}
	}
	if err := e.persist(); err != nil {
		return nil, err
	}
	return added, nil
}

// CreateHeat atomically moves the selection out of the pool into a new heat.
// Every selected id must currently be in the pool; otherwise nothing moves.
func (e *Engine) CreateHeat(stationID string, selection []string) (*models.Heat, error) {
	if len(selection) == 0 {
		return nil, ErrEmptySelection
	}
	round, err := e.currentRound(stationID)
	if err != nil {
		return nil, err
	}

	inPool := make(map[string]bool, len(round.Pool))
	for _, id := range round.Pool {
		inPool[id] = true
	}
	teams := dedupe(selection)
	for _, id := range teams {
		if !inPool[id] {
			return nil, fmt.Errorf("%w: %s", ErrNotInPool, id)
		}
	}

	heat := &models.Heat{
		ID:      e.ids.NewID(),
		Name:    fmt.Sprintf("Heat %d", len(round.Heats)+1),
		Teams:   teams,
		Results: make(map[string]*models.HeatResult),
	}
	round.Pool = without(round.Pool, teams...)
	round.Heats = append(round.Heats, heat)

	if err := e.persist(); err != nil {
		return nil, err
	}
	return cloneHeat(heat), nil
}

// GrantBye moves a pooled competitor into the round's "Byes" accounting heat
// with an automatic advance.
func (e *Engine) GrantBye(stationID, entityID string) error {
	return e.moveToAccountingHeat(stationID, entityID, models.ByeHeatName, &models.HeatResult{
		Advance: true,
		Notes:   "Bye",
	})
}

// Scratch removes a pooled competitor from contention via the "Scratched"
// accounting heat, keeping the record instead of deleting the team.
func (e *Engine) Scratch(stationID, entityID string) error {
	return e.moveToAccountingHeat(stationID, entityID, models.ScratchHeatName, &models.HeatResult{
		Advance: false,
		Notes:   "Scratched",
	})
}

func (e *Engine) moveToAccountingHeat(stationID, entityID, heatName string, result *models.HeatResult) error {
	round, err := e.currentRound(stationID)
	if err != nil {
		return err
	}

	idx := indexOf(round.Pool, entityID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotInPool, entityID)
	}

	var heat *models.Heat
	for _, h := range round.Heats {
		if h.Name == heatName {
			heat = h
			break
		}
	}
	if heat == nil {
		// Accounting heats are containers, not played heats: complete
		// from birth, one per round.
		heat = &models.Heat{
			ID:       e.ids.NewID(),
			Name:     heatName,
			Results:  make(map[string]*models.HeatResult),
			Complete: true,
		}
		round.Heats = append(round.Heats, heat)
	}

	round.Pool = append(round.Pool[:idx], round.Pool[idx+1:]...)
	heat.Teams = append(heat.Teams, entityID)
	heat.Results[entityID] = result

	return e.persist()
}

// ToggleAdvance flips a team's advance flag. Legal at any time before the
// round is superseded, including on heats already marked complete: quick-save
// does not freeze advancement decisions.
func (e *Engine) ToggleAdvance(stationID, heatID, entityID string) (bool, error) {
	round, err := e.currentRound(stationID)
	if err != nil {
		return false, err
	}
	heat := round.HeatByID(heatID)
	if heat == nil {
		return false, ErrHeatNotFound
	}
	if indexOf(heat.Teams, entityID) < 0 {
		return false, fmt.Errorf("%w: %s", ErrNotInHeat, entityID)
	}
	res := heat.Results[entityID]
	if res == nil {
		res = &models.HeatResult{}
		heat.Results[entityID] = res
	}
	res.Advance = !res.Advance
	if err := e.persist(); err != nil {
		return false, err
	}
	return res.Advance, nil
}

// QuickSave marks a heat complete and back-fills a result id for every team
// without one. Teams with no explicit decision stay at non-advance. No
// packets are emitted; pending queue contents flush on the next sync.
func (e *Engine) QuickSave(stationID, heatID string) error {
	round, err := e.currentRound(stationID)
	if err != nil {
		return err
	}
	heat := round.HeatByID(heatID)
	if heat == nil {
		return ErrHeatNotFound
	}

	heat.Complete = true
	for _, id := range heat.Teams {
		res := heat.Results[id]
		if res == nil {
			res = &models.HeatResult{}
			heat.Results[id] = res
		}
		if res.ResultID == "" {
			res.ResultID = e.ids.NewID()
		}
	}
	return e.persist()
}

// SaveHeat records scored field values for every team in the heat, marks it
// complete, and emits one packet per team into the mutation queue. The packet
// uuid is the team's stable result id, so re-saving a heat overwrites the
// earlier submission instead of duplicating it.
func (e *Engine) SaveHeat(stationID, heatID string, scores map[string]HeatScore) error {
	round, err := e.currentRound(stationID)
	if err != nil {
		return err
	}
	heat := round.HeatByID(heatID)
	if heat == nil {
		return ErrHeatNotFound
	}

	judge := e.judge()
	now := e.clock().UnixMilli()

	for _, entityID := range heat.Teams {
		score, ok := scores[entityID]
		if !ok {
			continue
		}
		res := heat.Results[entityID]
		if res == nil {
			res = &models.HeatResult{}
			heat.Results[entityID] = res
		}
		res.Advance = score.Advance
		res.Notes = score.Notes
		res.Fields = score.Fields
		if res.ResultID == "" {
			res.ResultID = e.ids.NewID()
		}

		payload := make(map[string]any, len(score.Fields)+2)
		for k, v := range score.Fields {
			payload[k] = v
		}
		payload["heat"] = heat.Name
		payload["round"] = round.Name

		packet := models.Packet{
			UUID:         res.ResultID,
			GameID:       stationID,
			EntityID:     entityID,
			ScorePayload: payload,
			Timestamp:    now,
			JudgeName:    judge.Name,
			JudgeEmail:   judge.Email,
			JudgeUnit:    judge.Unit,
		}
		if err := e.queue.Enqueue(packet); err != nil {
			return fmt.Errorf("failed to queue heat score for %s: %w", entityID, err)
		}
	}

	heat.Complete = true
	return e.persist()
}

// AdvanceRound computes the round's winners and losers, scanning every heat
// regardless of its complete flag, so toggles on a pending heat still count.
// It never mutates state: when the outcome is not terminal, the caller shows
// the confirmation and then calls ConfirmAdvance.
func (e *Engine) AdvanceRound(stationID string) (*Outcome, error) {
	round, err := e.currentRound(stationID)
	if err != nil {
		return nil, err
	}

	winners, losers := splitRound(round)
	if len(winners) == 0 {
		return nil, ErrNoWinners
	}

	b := e.data[stationID]
	finished := false
	switch {
	case round.IsFinalRound != nil && *round.IsFinalRound:
		finished = true
	case round.IsFinalRound == nil && len(winners) == 1:
		// Implicit final: a lone survivor with no explicit decision
		// ends the tournament.
		finished = true
	}

	out := &Outcome{
		Finished: finished,
		Winners:  winners,
		Losers:   losers,
	}
	if !finished {
		out.NextRoundName = fmt.Sprintf("Round %d", len(b.Rounds)+1)
	}
	return out, nil
}

// ConfirmAdvance appends the next round after the caller confirmed the
// outcome. Winners are recomputed from current state so toggles made while
// the confirmation was on screen are honored.
func (e *Engine) ConfirmAdvance(stationID string) (*models.Round, error) {
	round, err := e.currentRound(stationID)
	if err != nil {
		return nil, err
	}
	winners, _ := splitRound(round)
	if len(winners) == 0 {
		return nil, ErrNoWinners
	}

	b := e.data[stationID]
	next := &models.Round{
		Name:  fmt.Sprintf("Round %d", len(b.Rounds)+1),
		Pool:  winners,
		Heats: []*models.Heat{},
	}
	b.Rounds = append(b.Rounds, next)

	if err := e.persist(); err != nil {
		return nil, err
	}
	return cloneRound(next), nil
}

// RenameRound relabels the current round.
func (e *Engine) RenameRound(stationID, name string) error {
	if name == "" {
		return ErrEmptyRoundName
	}
	round, err := e.currentRound(stationID)
	if err != nil {
		return err
	}
	round.Name = name
	return e.persist()
}

// SetFinalRound records the operator's explicit final-round decision on the
// current round.
func (e *Engine) SetFinalRound(stationID string, final bool) error {
	round, err := e.currentRound(stationID)
	if err != nil {
		return err
	}
	round.IsFinalRound = &final
	return e.persist()
}

// ShowFinalToggle reports whether the UI should surface the final-round
// switch: a round collapsed to a single heat with an empty pool, or one
// already flagged final.
func (e *Engine) ShowFinalToggle(stationID string) bool {
	round, err := e.currentRound(stationID)
	if err != nil {
		return false
	}
	if round.IsFinalRound != nil && *round.IsFinalRound {
		return true
	}
	return len(round.Heats) == 1 && len(round.Pool) == 0
}

func (e *Engine) currentRound(stationID string) (*models.Round, error) {
	b, ok := e.data[stationID]
	if !ok || len(b.Rounds) == 0 {
		return nil, ErrEventNotStarted
	}
	return b.Current(), nil
}

func (e *Engine) persist() error {
	if err := e.st.Set(StorageKey, e.data); err != nil {
		return fmt.Errorf("failed to persist bracket state: %w", err)
	}
	return nil
}

// splitRound partitions the round's assigned competitors: winners are those
// with an advance-flagged result in any heat, everyone else (including
// competitors still in the pool) loses.
func splitRound(round *models.Round) (winners, losers []string) {
	advanced := make(map[string]bool)
	for _, h := range round.Heats {
		for _, id := range h.Teams {
			if res := h.Results[id]; res != nil && res.Advance {
				advanced[id] = true
			}
		}
	}
	for _, h := range round.Heats {
		for _, id := range h.Teams {
			if advanced[id] {
				continue
			}
			losers = append(losers, id)
		}
	}
	losers = append(losers, round.Pool...)
	// Preserve heat order for the winners list.
	seen := make(map[string]bool)
	for _, h := range round.Heats {
		for _, id := range h.Teams {
			if advanced[id] && !seen[id] {
				winners = append(winners, id)
				seen[id] = true
			}
		}
	}
	return winners, losers
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func without(ids []string, drop ...string) []string {
	set := make(map[string]bool, len(drop))
	for _, id := range drop {
		set[id] = true
	}
	out := ids[:0]
	for _, id := range ids {
		if !set[id] {
			out = append(out, id)
		}
	}
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func cloneState(b *models.BracketState) *models.BracketState {
	out := &models.BracketState{Rounds: make([]*models.Round, len(b.Rounds))}
	for i, r := range b.Rounds {
		out.Rounds[i] = cloneRound(r)
	}
	return out
}

func cloneRound(r *models.Round) *models.Round {
	out := &models.Round{
		Name:  r.Name,
		Pool:  append([]string{}, r.Pool...),
		Heats: make([]*models.Heat, len(r.Heats)),
	}
	if r.IsFinalRound != nil {
		v := *r.IsFinalRound
		out.IsFinalRound = &v
	}
	for i, h := range r.Heats {
		out.Heats[i] = cloneHeat(h)
	}
	return out
}

func cloneHeat(h *models.Heat) *models.Heat {
	out := &models.Heat{
		ID:       h.ID,
		Name:     h.Name,
		Teams:    append([]string{}, h.Teams...),
		Results:  make(map[string]*models.HeatResult, len(h.Results)),
		Complete: h.Complete,
	}
	for id, res := range h.Results {
		cr := *res
		if res.Fields != nil {
			cr.Fields = make(map[string]any, len(res.Fields))
			for k, v := range res.Fields {
				cr.Fields[k] = v
			}
		}
		out.Results[id] = &cr
	}
	return out
}
