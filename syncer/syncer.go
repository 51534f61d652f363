// Package syncer drains the mutation queue against the server's score
// endpoint. It is reactive: nothing inside schedules retries, a failed packet
// simply stays queued until the next Sync call (reconnect, next submission,
// or a manual tap on the status badge).
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/queue"
)

// ErrServerUnreachable is returned when a sync attempt could not deliver a
// single packet because the network itself was down. Individual packet
// rejections never surface as an engine error.
var ErrServerUnreachable = errors.New("score server unreachable")

// Submitter delivers one packet to the remote submission endpoint. The server
// upserts by uuid, so redelivery is harmless.
type Submitter interface {
	Submit(ctx context.Context, p models.Packet) error
}

// Status describes the engine's externally observable state.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusInFlight Status = "in-flight"
)

// Result summarizes one sync attempt.
type Result struct {
	Synced    int `json:"synced"`
	Remaining int `json:"remaining"`
	Failed    int `json:"failed"`
}

// Engine is the sole consumer of the queue that talks to the network.
type Engine struct {
	queue *queue.Queue
	sub   Submitter
	log   *slog.Logger

	group singleflight.Group

	mu       sync.Mutex
	inFlight bool
	last     *Result
}

func New(q *queue.Queue, sub Submitter, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{queue: q, sub: sub, log: log}
}

// Sync drains a snapshot of the queue. If a sync is already in flight the
// call joins it and returns the in-flight result instead of starting a second
// network round for the same snapshot.
func (e *Engine) Sync(ctx context.Context) (Result, error) {
	v, err, _ := e.group.Do("sync", func() (any, error) {
		e.setInFlight(true)
		defer e.setInFlight(false)
		return e.drain(ctx)
	})
	res, _ := v.(Result)

	e.mu.Lock()
	e.last = &res
	e.mu.Unlock()
	return res, err
}

// Status reports whether a sync is running and the last completed result.
func (e *Engine) Status() (Status, *Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := StatusIdle
	if e.inFlight {
		st = StatusInFlight
	}
	if e.last == nil {
		return st, nil
	}
	last := *e.last
	return st, &last
}

func (e *Engine) setInFlight(v bool) {
	e.mu.Lock()
	e.inFlight = v
	e.mu.Unlock()
}

func (e *Engine) drain(ctx context.Context) (Result, error) {
	snapshot := e.queue.List()
	var res Result
	if len(snapshot) == 0 {
		return res, nil
	}

	transportFailures := 0
	for _, p := range snapshot {
		err := e.sub.Submit(ctx, p)
		if err != nil {
			res.Failed++
			var re *RejectedError
			if !errors.As(err, &re) {
				transportFailures++
			}
			e.log.Warn("packet submission failed",
				slog.String("uuid", p.UUID),
				slog.String("game_id", p.GameID),
				slog.Any("error", err))
			continue
		}
		// Remove each packet as the server confirms it, so a crash
		// mid-sync never resubmits what was already accepted.
		if err := e.queue.Remove(p.UUID); err != nil {
			return res, fmt.Errorf("failed to dequeue synced packet %s: %w", p.UUID, err)
		}
		res.Synced++
	}
	res.Remaining = e.queue.Count()

	if res.Synced == 0 && transportFailures == len(snapshot) {
		return res, ErrServerUnreachable
	}
	return res, nil
}

// RejectedError marks a packet the server answered but refused (non-2xx).
// The packet stays queued; the failure is not a connectivity problem.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("server rejected packet: status %d: %s", e.StatusCode, e.Body)
}
