package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/coyotecrew/camporee-collator/designer"
	"github.com/coyotecrew/camporee-collator/models"
)

// CatalogService assembles the /games.json catalog from the game definition
// files on disk. Definitions are read once at startup; Reload picks up edits
// without a restart.
type CatalogService interface {
	Catalog() models.Catalog
	Reload() error
}

type catalogService struct {
	gamesDir string

	mu      sync.RWMutex
	catalog models.Catalog
}

func NewCatalogService(gamesDir string) (CatalogService, error) {
	s := &catalogService{gamesDir: gamesDir}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *catalogService) Catalog() models.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

func (s *catalogService) Reload() error {
	games, err := designer.LoadSourceGames(s.gamesDir)
	if err != nil {
		return fmt.Errorf("failed to load game definitions: %w", err)
	}

	catalog := models.Catalog{}
	for _, g := range games {
		station := models.Station{
			ID:          g.ID,
			Name:        g.Name,
			Type:        models.EntityType(g.Type),
			BracketMode: g.BracketMode,
		}
		for _, f := range g.Fields {
			station.Fields = append(station.Fields, sourceToField(f))
		}
		catalog.Stations = append(catalog.Stations, station)
	}

	common, err := loadCommonScoring(s.gamesDir)
	if err != nil {
		return err
	}
	catalog.CommonScoring = common

	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()
	return nil
}

func sourceToField(f designer.SourceField) models.Field {
	return models.Field{
		ID:           f.ID,
		Label:        f.Label,
		Type:         models.NormalizeFieldType(f.Type),
		Kind:         models.FieldKind(f.Kind),
		Audience:     f.Audience,
		Placeholder:  f.Placeholder,
		Min:          f.Min,
		Max:          f.Max,
		SortOrder:    f.SortOrder,
		DefaultValue: f.DefaultValue,
	}
}

// loadCommonScoring reads the optional shared scoring block appended to every
// station's form. Absence is fine.
func loadCommonScoring(gamesDir string) ([]models.Field, error) {
	raw, err := os.ReadFile(filepath.Join(gamesDir, "_common_scoring.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read common scoring fields: %w", err)
	}
	var src []designer.SourceField
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("failed to parse common scoring fields: %w", err)
	}
	out := make([]models.Field, 0, len(src))
	for _, f := range src {
		out = append(out, sourceToField(f))
	}
	return out, nil
}
