// Package queue holds the device's pending score submissions. It is the
// single buffer between the scoring producers (form submissions, bracket
// heats) and the sync engine: everything a judge enters lands here first and
// leaves only on confirmed server acceptance.
package queue

import (
	"fmt"
	"sync"

	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/store"
)

// StorageKey is where the pending queue lives in the device store.
const StorageKey = "coyote_score_queue"

// Queue is an ordered, replace-by-uuid collection of pending packets. Every
// mutation persists the whole queue synchronously before returning, so a
// crash right after Enqueue never loses a submission.
type Queue struct {
	mu      sync.Mutex
	st      store.Store
	packets []models.Packet
}

// Open loads the persisted queue, or starts empty when none exists.
func Open(st store.Store) (*Queue, error) {
	q := &Queue{st: st}
	if _, err := st.Get(StorageKey, &q.packets); err != nil {
		return nil, fmt.Errorf("failed to load score queue: %w", err)
	}
	return q, nil
}

// Enqueue adds a packet, or replaces the payload of an already-queued packet
// carrying the same uuid. A replaced packet keeps its original slot in the
// order; it is not moved to the end.
func (q *Queue) Enqueue(p models.Packet) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	replaced := false
	for i := range q.packets {
		if q.packets[i].UUID == p.UUID {
			q.packets[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		q.packets = append(q.packets, p)
	}
	return q.persist()
}

// List returns a snapshot of the pending packets in order. Mutating the
// returned slice does not affect the queue.
func (q *Queue) List() []models.Packet {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.Packet, len(q.packets))
	copy(out, q.packets)
	return out
}

// Remove drops the packets whose uuid appears in ids. Unknown ids are
// ignored, so removal is idempotent.
func (q *Queue) Remove(ids ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := q.packets[:0]
	for _, p := range q.packets {
		if !drop[p.UUID] {
			kept = append(kept, p)
		}
	}
	q.packets = kept
	return q.persist()
}

// Clear drops every pending packet, in memory and in the store. Used by the
// local reset so a live queue cannot write wiped packets back to disk.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.packets = nil
	return q.persist()
}

// Count reports the number of pending packets, for the unsynced badge.
func (q *Queue) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.packets)
}

// Find returns the pending packet for a (station, competitor) pair, if any.
// Used by the scoring session to re-edit instead of duplicating.
func (q *Queue) Find(gameID, entityID string) (models.Packet, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, p := range q.packets {
		if p.GameID == gameID && p.EntityID == entityID {
			return p, true
		}
	}
	return models.Packet{}, false
}

// ScoredEntities returns the set of competitors with a pending packet for the
// given station. Drives the "Done" markers on the entity list.
func (q *Queue) ScoredEntities(gameID string) map[string]bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	set := make(map[string]bool)
	for _, p := range q.packets {
		if p.GameID == gameID {
			set[p.EntityID] = true
		}
	}
	return set
}

// persist writes the full queue under the storage key. Callers hold q.mu.
func (q *Queue) persist() error {
	if err := q.st.Set(StorageKey, q.packets); err != nil {
		return fmt.Errorf("failed to persist score queue: %w", err)
	}
	return nil
}
