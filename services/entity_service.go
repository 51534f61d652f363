package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/repositories"
	"github.com/coyotecrew/camporee-collator/utils"
)

type CreateEntityInput struct {
	Name        string            `json:"name"`
	Type        models.EntityType `json:"type"`
	TroopNumber string            `json:"troop_number"`
}

// EntityService manages the competitor roster, including the on-the-fly
// registrations judges make at a station.
type EntityService interface {
	Create(ctx context.Context, input CreateEntityInput) (*models.Entity, error)
	List(ctx context.Context) ([]models.Entity, error)
}

type entityService struct {
	entities repositories.EntityRepository
	ids      utils.IDGenerator
	clock    utils.Clock
}

func NewEntityService(entities repositories.EntityRepository, ids utils.IDGenerator, clock utils.Clock) EntityService {
	if clock == nil {
		clock = utils.SystemClock
	}
	return &entityService{entities: entities, ids: ids, clock: clock}
}

func (s *entityService) Create(ctx context.Context, input CreateEntityInput) (*models.Entity, error) {
	name := strings.TrimSpace(input.Name)
	troop := strings.TrimSpace(input.TroopNumber)
	if name == "" {
		return nil, ErrEntityNameRequired
	}
	if troop == "" {
		return nil, ErrEntityTroopRequired
	}
	if !input.Type.Valid() {
		return nil, ErrEntityTypeInvalid
	}

	entity := &models.Entity{
		ID:          s.ids.NewID(),
		Type:        input.Type,
		TroopNumber: troop,
		Name:        name,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.entities.Create(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to register entity: %w", err)
	}
	return entity, nil
}

func (s *entityService) List(ctx context.Context) ([]models.Entity, error) {
	return s.entities.List(ctx)
}
