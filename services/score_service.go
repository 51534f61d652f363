package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coyotecrew/camporee-collator/live"
	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/repositories"
)

// ScoreService accepts packets from judge devices. Acceptance is an
// idempotent upsert keyed by the packet uuid: a device retrying after a
// half-delivered sync overwrites its own earlier submission.
type ScoreService interface {
	SubmitPacket(ctx context.Context, packet models.Packet) (*models.Score, bool, error)
	ListByGame(ctx context.Context, gameID string) ([]models.Score, error)
}

type scoreService struct {
	scores repositories.ScoreRepository
	hub    *live.Hub
	log    *slog.Logger
}

func NewScoreService(scores repositories.ScoreRepository, hub *live.Hub, log *slog.Logger) ScoreService {
	if log == nil {
		log = slog.Default()
	}
	return &scoreService{scores: scores, hub: hub, log: log}
}

func (s *scoreService) SubmitPacket(ctx context.Context, packet models.Packet) (*models.Score, bool, error) {
	switch {
	case packet.UUID == "":
		return nil, false, ErrPacketUUIDRequired
	case packet.GameID == "":
		return nil, false, ErrPacketGameRequired
	case packet.EntityID == "":
		return nil, false, ErrPacketEntityRequired
	case packet.ScorePayload == nil:
		return nil, false, ErrPacketPayloadRequired
	}

	score := &models.Score{
		UUID:         packet.UUID,
		GameID:       packet.GameID,
		EntityID:     packet.EntityID,
		ScorePayload: packet.ScorePayload,
		Timestamp:    packet.Timestamp,
		JudgeName:    packet.JudgeName,
		JudgeEmail:   packet.JudgeEmail,
		JudgeUnit:    packet.JudgeUnit,
		UpdatedAt:    time.Now().UTC(),
	}

	created, err := s.scores.Upsert(ctx, score)
	if err != nil {
		return nil, false, fmt.Errorf("failed to store score: %w", err)
	}

	s.log.Info("score accepted",
		slog.String("uuid", score.UUID),
		slog.String("game_id", score.GameID),
		slog.String("entity_id", score.EntityID),
		slog.Bool("created", created))

	if s.hub != nil {
		s.hub.Broadcast(score.GameID, live.Event{
			Type:    live.EventScoreUpserted,
			Payload: score,
		})
	}
	return score, created, nil
}

func (s *scoreService) ListByGame(ctx context.Context, gameID string) ([]models.Score, error) {
	return s.scores.ListByGame(ctx, gameID)
}
