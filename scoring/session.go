package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/queue"
	"github.com/coyotecrew/camporee-collator/store"
	"github.com/coyotecrew/camporee-collator/syncer"
	"github.com/coyotecrew/camporee-collator/utils"
)

// Session owns the device's scoring state for the standard (non-bracket)
// path. All mutations flow through its methods; rendering reads snapshots.
type Session struct {
	st      store.Store
	queue   *queue.Queue
	syncer  *syncer.Engine
	catalog *Catalog
	drafts  *Drafts
	ids     utils.IDGenerator
	clock   utils.Clock
	online  func() bool
	log     *slog.Logger

	judge models.Judge
}

func NewSession(
	st store.Store,
	q *queue.Queue,
	sync *syncer.Engine,
	catalog *Catalog,
	ids utils.IDGenerator,
	clock utils.Clock,
	online func() bool,
	log *slog.Logger,
) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	judge, err := LoadJudge(st)
	if err != nil {
		return nil, err
	}
	return &Session{
		st:      st,
		queue:   q,
		syncer:  sync,
		catalog: catalog,
		drafts:  NewDrafts(st),
		ids:     ids,
		clock:   clock,
		online:  online,
		log:     log,
		judge:   judge,
	}, nil
}

func (s *Session) Judge() models.Judge { return s.judge }

func (s *Session) SetJudge(j models.Judge) error {
	if err := SaveJudge(s.st, j); err != nil {
		return err
	}
	s.judge = j
	return nil
}

func (s *Session) Catalog() *Catalog { return s.catalog }
func (s *Session) Drafts() *Drafts   { return s.drafts }
func (s *Session) Queue() *queue.Queue {
	return s.queue
}

// SubmitScore validates the payload against the station's field set, queues
// exactly one packet for the (station, competitor) pair (reusing the queued
// packet's uuid on re-edit), clears the pair's draft, and kicks a background
// sync when online. The queue never holds more than one pending packet per
// pair outside of brackets.
func (s *Session) SubmitScore(ctx context.Context, stationID, entityID string, payload map[string]any) (models.Packet, error) {
	fields := s.catalog.Config().JudgeFields(stationID)
	for _, f := range fields {
		if v, ok := payload[f.ID]; ok {
			if err := f.ValidateValue(v); err != nil {
				return models.Packet{}, fmt.Errorf("invalid score: %w", err)
			}
		}
	}

	id := s.ids.NewID()
	if existing, ok := s.queue.Find(stationID, entityID); ok {
		id = existing.UUID
	}

	packet := models.Packet{
		UUID:         id,
		GameID:       stationID,
		EntityID:     entityID,
		ScorePayload: payload,
		Timestamp:    s.clock().UnixMilli(),
		JudgeName:    s.judge.Name,
		JudgeEmail:   s.judge.Email,
		JudgeUnit:    s.judge.Unit,
	}
	if err := s.queue.Enqueue(packet); err != nil {
		return models.Packet{}, err
	}
	if err := s.drafts.Clear(stationID, entityID); err != nil {
		s.log.Warn("failed to clear draft", slog.String("station", stationID), slog.Any("error", err))
	}

	if s.online() {
		s.TriggerSync()
	}
	return packet, nil
}

// TriggerSync starts a background drain. The sync engine's single-flight
// guard collapses overlapping triggers; its status stays observable while the
// judge keeps scoring.
func (s *Session) TriggerSync() {
	go func() {
		if _, err := s.syncer.Sync(context.Background()); err != nil {
			s.log.Warn("background sync failed", slog.Any("error", err))
		}
	}()
}

// Sync drains the queue and waits for the result, for the manual tap on the
// status badge.
func (s *Session) Sync(ctx context.Context) (syncer.Result, error) {
	return s.syncer.Sync(ctx)
}

// PendingCount feeds the unsynced badge.
func (s *Session) PendingCount() int {
	return s.queue.Count()
}

// ScoredEntities reports which competitors already have a pending packet for
// the station, so the entity list can sort and strike them.
func (s *Session) ScoredEntities(stationID string) map[string]bool {
	return s.queue.ScoredEntities(stationID)
}

// ResetLocal wipes brackets, drafts, the queue and cached catalog back to a
// fresh install, keeping the judge identity. The live queue and catalog are
// cleared in memory too, so nothing already loaded can write wiped data back
// to the store. Data already accepted by the server is untouched.
func (s *Session) ResetLocal() error {
	if err := s.st.Reset(JudgeKey); err != nil {
		return fmt.Errorf("failed to reset local data: %w", err)
	}
	if err := s.queue.Clear(); err != nil {
		return fmt.Errorf("failed to clear pending queue: %w", err)
	}
	s.catalog.Clear()
	return nil
}
