package queue

import (
	"testing"

	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packet(uuid, gameID, entityID string, total float64) models.Packet {
	return models.Packet{
		UUID:         uuid,
		GameID:       gameID,
		EntityID:     entityID,
		ScorePayload: map[string]any{"total": total},
		Timestamp:    1700000000000,
	}
}

func TestEnqueueReplacesInPlace(t *testing.T) {
	st := store.NewMemory()
	q, err := Open(st)
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(packet("a", "knots", "p1", 10)))
	require.NoError(t, q.Enqueue(packet("b", "knots", "p2", 20)))
	require.NoError(t, q.Enqueue(packet("c", "knots", "p3", 30)))

	// Re-submitting uuid "a" must overwrite it where it sits, not append.
	require.NoError(t, q.Enqueue(packet("a", "knots", "p1", 99)))

	packets := q.List()
	require.Len(t, packets, 3)
	assert.Equal(t, "a", packets[0].UUID)
	assert.Equal(t, 99.0, packets[0].ScorePayload["total"])
	assert.Equal(t, "b", packets[1].UUID)
	assert.Equal(t, "c", packets[2].UUID)
}

func TestRemoveIsIdempotent(t *testing.T) {
	st := store.NewMemory()
	q, err := Open(st)
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(packet("a", "knots", "p1", 10)))
	require.NoError(t, q.Enqueue(packet("b", "knots", "p2", 20)))

	require.NoError(t, q.Remove("a", "nope"))
	assert.Equal(t, 1, q.Count())

	require.NoError(t, q.Remove("a"))
	assert.Equal(t, 1, q.Count())

	require.NoError(t, q.Remove("b"))
	assert.Equal(t, 0, q.Count())
}

func TestPersistsAcrossReopen(t *testing.T) {
	st := store.NewMemory()

	q, err := Open(st)
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(packet("a", "knots", "p1", 10)))
	require.NoError(t, q.Enqueue(packet("b", "fire", "p1", 5)))

	reopened, err := Open(st)
	require.NoError(t, err)
	packets := reopened.List()
	require.Len(t, packets, 2)
	assert.Equal(t, "a", packets[0].UUID)
	assert.Equal(t, "b", packets[1].UUID)
}

func TestFindAndScoredEntities(t *testing.T) {
	st := store.NewMemory()
	q, err := Open(st)
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(packet("a", "knots", "p1", 10)))
	require.NoError(t, q.Enqueue(packet("b", "knots", "p2", 20)))
	require.NoError(t, q.Enqueue(packet("c", "fire", "p1", 5)))

	found, ok := q.Find("knots", "p2")
	require.True(t, ok)
	assert.Equal(t, "b", found.UUID)

	_, ok = q.Find("knots", "p9")
	assert.False(t, ok)

	scored := q.ScoredEntities("knots")
	assert.Equal(t, map[string]bool{"p1": true, "p2": true}, scored)
}

func TestListSnapshotIsIndependent(t *testing.T) {
	st := store.NewMemory()
	q, err := Open(st)
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(packet("a", "knots", "p1", 10)))

	snapshot := q.List()
	snapshot[0].UUID = "mutated"

	packets := q.List()
	assert.Equal(t, "a", packets[0].UUID)
}
