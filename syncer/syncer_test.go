package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/queue"
	"github.com/coyotecrew/camporee-collator/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSubmitter fails the uuids in reject (as server rejections) and the
// uuids in drop (as transport errors), accepting everything else.
type fakeSubmitter struct {
	mu      sync.Mutex
	reject  map[string]bool
	drop    map[string]bool
	calls   []string
	block   chan struct{}
	started chan struct{}
}

func (f *fakeSubmitter) Submit(ctx context.Context, p models.Packet) error {
	f.mu.Lock()
	f.calls = append(f.calls, p.UUID)
	f.mu.Unlock()

	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		<-f.block
	}
	if f.reject[p.UUID] {
		return &RejectedError{StatusCode: 400, Body: "bad packet"}
	}
	if f.drop[p.UUID] {
		return errors.New("dial tcp: connection refused")
	}
	return nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newQueue(t *testing.T, packets ...models.Packet) *queue.Queue {
	t.Helper()
	q, err := queue.Open(store.NewMemory())
	require.NoError(t, err)
	for _, p := range packets {
		require.NoError(t, q.Enqueue(p))
	}
	return q
}

func pkt(uuid string) models.Packet {
	return models.Packet{
		UUID:         uuid,
		GameID:       "knots",
		EntityID:     "p-" + uuid,
		ScorePayload: map[string]any{"total": 1.0},
		Timestamp:    1700000000000,
	}
}

func TestSyncDrainsQueue(t *testing.T) {
	q := newQueue(t, pkt("a"), pkt("b"), pkt("c"))
	e := New(q, &fakeSubmitter{}, nil)

	res, err := e.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 3, Remaining: 0, Failed: 0}, res)
	assert.Equal(t, 0, q.Count())
}

func TestFailedPacketsStayQueued(t *testing.T) {
	q := newQueue(t, pkt("a"), pkt("b"), pkt("c"))
	sub := &fakeSubmitter{reject: map[string]bool{"b": true}}
	e := New(q, sub, nil)

	res, err := e.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 2, Remaining: 1, Failed: 1}, res)

	remaining := q.List()
	require.Len(t, remaining, 1)
	assert.Equal(t, "b", remaining[0].UUID)
}

func TestUnreachableOnlyWhenNothingDelivered(t *testing.T) {
	q := newQueue(t, pkt("a"), pkt("b"))
	sub := &fakeSubmitter{drop: map[string]bool{"a": true, "b": true}}
	e := New(q, sub, nil)

	res, err := e.Sync(context.Background())
	require.ErrorIs(t, err, ErrServerUnreachable)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 2, q.Count())

	// One delivery means the server was reachable, even if the rest failed.
	sub2 := &fakeSubmitter{drop: map[string]bool{"b": true}}
	e2 := New(q, sub2, nil)
	res2, err := e2.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res2.Synced)
}

func TestRejectionsAreNotUnreachable(t *testing.T) {
	q := newQueue(t, pkt("a"))
	sub := &fakeSubmitter{reject: map[string]bool{"a": true}}
	e := New(q, sub, nil)

	res, err := e.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Synced: 0, Remaining: 1, Failed: 1}, res)
}

func TestConcurrentSyncsCollapseToOne(t *testing.T) {
	q := newQueue(t, pkt("a"), pkt("b"))
	sub := &fakeSubmitter{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	e := New(q, sub, nil)

	results := make(chan Result, 2)
	go func() {
		res, _ := e.Sync(context.Background())
		results <- res
	}()
	<-sub.started

	st, _ := e.Status()
	assert.Equal(t, StatusInFlight, st)

	go func() {
		res, _ := e.Sync(context.Background())
		results <- res
	}()

	time.Sleep(20 * time.Millisecond)
	close(sub.block)

	r1 := <-results
	r2 := <-results
	assert.Equal(t, r1, r2)
	// Two packets, one drain: the second Sync joined instead of resubmitting.
	assert.Equal(t, 2, sub.callCount())

	st, last := e.Status()
	assert.Equal(t, StatusIdle, st)
	require.NotNil(t, last)
	assert.Equal(t, 2, last.Synced)
}

func TestEmptyQueueSyncIsNoop(t *testing.T) {
	q := newQueue(t)
	sub := &fakeSubmitter{}
	e := New(q, sub, nil)

	res, err := e.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Equal(t, 0, sub.callCount())
}
