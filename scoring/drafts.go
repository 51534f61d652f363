package scoring

import (
	"fmt"

	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/store"
)

// Store keys for drafts and judge identity.
const (
	DraftsKey = "coyote_drafts"
	JudgeKey  = "judge_info"
)

// Drafts is the key-value mirror of in-progress form values, keyed by
// (station, entity). Not a correctness-critical path: losing a draft loses
// keystrokes, never a submitted score.
type Drafts struct {
	st store.Store
}

func NewDrafts(st store.Store) *Drafts {
	return &Drafts{st: st}
}

func draftKey(stationID, entityID string) string {
	return fmt.Sprintf("%s_%s", stationID, entityID)
}

func (d *Drafts) load() (map[string]map[string]any, error) {
	drafts := make(map[string]map[string]any)
	if _, err := d.st.Get(DraftsKey, &drafts); err != nil {
		return nil, fmt.Errorf("failed to load drafts: %w", err)
	}
	if drafts == nil {
		drafts = make(map[string]map[string]any)
	}
	return drafts, nil
}

// Save mirrors the current form values for a pair.
func (d *Drafts) Save(stationID, entityID string, values map[string]any) error {
	drafts, err := d.load()
	if err != nil {
		return err
	}
	drafts[draftKey(stationID, entityID)] = values
	return d.st.Set(DraftsKey, drafts)
}

// Get returns the saved draft for a pair, if any.
func (d *Drafts) Get(stationID, entityID string) (map[string]any, bool) {
	drafts, err := d.load()
	if err != nil {
		return nil, false
	}
	v, ok := drafts[draftKey(stationID, entityID)]
	return v, ok
}

// Clear drops the draft for a pair, typically right after its score is
// queued.
func (d *Drafts) Clear(stationID, entityID string) error {
	drafts, err := d.load()
	if err != nil {
		return err
	}
	delete(drafts, draftKey(stationID, entityID))
	return d.st.Set(DraftsKey, drafts)
}

// LoadJudge restores the persisted judge identity, empty when none saved.
func LoadJudge(st store.Store) (models.Judge, error) {
	var j models.Judge
	if _, err := st.Get(JudgeKey, &j); err != nil {
		return models.Judge{}, fmt.Errorf("failed to load judge identity: %w", err)
	}
	return j, nil
}

// SaveJudge persists the judge identity. It survives a local reset.
func SaveJudge(st store.Store, j models.Judge) error {
	return st.Set(JudgeKey, j)
}
