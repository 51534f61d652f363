// Package scoring is the device-side, non-bracket path: the station/entity
// catalog cache, local drafts, judge identity, and the scoring session that
// turns a filled form into exactly one queued packet per (station,
// competitor) pair.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/store"
)

// Store keys for the cached catalog halves.
const (
	ConfigKey   = "coyote_config"
	EntitiesKey = "coyote_entities"
)

// Catalog caches the server's station and competitor lists on the device.
// A failed refresh keeps the last good cache; with no cache at all, lists
// come back empty rather than failing the caller.
type Catalog struct {
	st      store.Store
	baseURL string
	client  *http.Client

	config   models.Catalog
	entities []models.Entity
}

func NewCatalog(st store.Store, baseURL string, client *http.Client) *Catalog {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Catalog{
		st:      st,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

// Load restores the cached catalog from the device store. Missing keys are
// fine; the catalog just starts empty.
func (c *Catalog) Load() error {
	if _, err := c.st.Get(ConfigKey, &c.config); err != nil {
		return fmt.Errorf("failed to load cached config: %w", err)
	}
	if _, err := c.st.Get(EntitiesKey, &c.entities); err != nil {
		return fmt.Errorf("failed to load cached entities: %w", err)
	}
	return nil
}

type gamesPayload struct {
	Games         []models.Station `json:"games"`
	CommonScoring []models.Field   `json:"common_scoring"`
}

// Refresh fetches the station config and the entity roster in parallel and
// awaits both before swapping the cache. Either fetch failing leaves the
// previous cache untouched.
func (c *Catalog) Refresh(ctx context.Context) error {
	var games gamesPayload
	var entities []models.Entity

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.fetchJSON(gctx, "/games.json", &games)
	})
	g.Go(func() error {
		return c.fetchJSON(gctx, "/api/entities", &entities)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("catalog refresh failed: %w", err)
	}

	c.config = models.Catalog{Stations: games.Games, CommonScoring: games.CommonScoring}
	c.entities = entities

	if err := c.st.Set(ConfigKey, c.config); err != nil {
		return err
	}
	return c.st.Set(EntitiesKey, c.entities)
}

func (c *Catalog) fetchJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// Clear drops the in-memory cache. The caller is expected to have wiped the
// store keys already; the next Refresh repopulates both.
func (c *Catalog) Clear() {
	c.config = models.Catalog{}
	c.entities = nil
}

// Config returns the cached station configuration.
func (c *Catalog) Config() models.Catalog {
	return c.config
}

// Stations lists the stations matching the view mode. Stations without an
// explicit type show up in every mode they match.
func (c *Catalog) Stations(mode models.EntityType) []models.Station {
	var out []models.Station
	for _, s := range c.config.Stations {
		if s.Type == "" || s.Type == mode {
			out = append(out, s)
		}
	}
	return out
}

// Entities lists competitors of the given type whose name or troop number
// matches the filter, ordered by troop number.
func (c *Catalog) Entities(typ models.EntityType, filter string) []models.Entity {
	term := strings.ToLower(filter)
	var out []models.Entity
	for _, e := range c.entities {
		if e.Type != typ {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(e.Name), term) &&
			!strings.Contains(e.TroopNumber, term) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].TroopNumber)
		b, _ := strconv.Atoi(out[j].TroopNumber)
		return a < b
	})
	return out
}

// Entity looks up a competitor by id.
func (c *Catalog) Entity(id string) (models.Entity, bool) {
	for _, e := range c.entities {
		if e.ID == id {
			return e, true
		}
	}
	return models.Entity{}, false
}

// CreateEntity registers a new competitor on the server and appends it to the
// local cache.
func (c *Catalog) CreateEntity(ctx context.Context, name string, typ models.EntityType, troopNumber string) (models.Entity, error) {
	body, err := json.Marshal(map[string]string{
		"name":         name,
		"type":         string(typ),
		"troop_number": troopNumber,
	})
	if err != nil {
		return models.Entity{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/entities", strings.NewReader(string(body)))
	if err != nil {
		return models.Entity{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Entity{}, fmt.Errorf("failed to register entity: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return models.Entity{}, fmt.Errorf("entity registration: unexpected status %d", resp.StatusCode)
	}

	var created models.Entity
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return models.Entity{}, fmt.Errorf("failed to decode created entity: %w", err)
	}

	c.entities = append(c.entities, created)
	if err := c.st.Set(EntitiesKey, c.entities); err != nil {
		return models.Entity{}, err
	}
	return created, nil
}
