package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogServer(t *testing.T, failEntities bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/games.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"games": []models.Station{
				{ID: "knots", Name: "Knot Tying", Type: models.EntityPatrol},
				{ID: "flag", Name: "Flag Ceremony", Type: models.EntityTroop},
				{ID: "open", Name: "Open Station"},
			},
			"common_scoring": []models.Field{
				{ID: "spirit", Label: "Spirit", Type: models.FieldNumber},
			},
		})
	})
	mux.HandleFunc("/api/entities", func(w http.ResponseWriter, r *http.Request) {
		if failEntities {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]models.Entity{
				{ID: "p1", Type: models.EntityPatrol, TroopNumber: "12", Name: "Eagles"},
				{ID: "p2", Type: models.EntityPatrol, TroopNumber: "3", Name: "Hawks"},
				{ID: "t1", Type: models.EntityTroop, TroopNumber: "12", Name: "Troop 12"},
			})
		case http.MethodPost:
			var in struct {
				Name        string `json:"name"`
				Type        string `json:"type"`
				TroopNumber string `json:"troop_number"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(models.Entity{
				ID:          "p-new",
				Type:        models.EntityType(in.Type),
				TroopNumber: in.TroopNumber,
				Name:        in.Name,
			})
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRefreshSwapsCacheAndPersists(t *testing.T) {
	srv := catalogServer(t, false)
	st := store.NewMemory()
	c := NewCatalog(st, srv.URL, srv.Client())

	require.NoError(t, c.Refresh(context.Background()))
	assert.Len(t, c.Config().Stations, 3)

	// A fresh catalog over the same store starts from the persisted cache.
	c2 := NewCatalog(st, srv.URL, nil)
	require.NoError(t, c2.Load())
	assert.Len(t, c2.Config().Stations, 3)
	_, ok := c2.Entity("p1")
	assert.True(t, ok)
}

func TestFailedRefreshKeepsLastGoodCache(t *testing.T) {
	good := catalogServer(t, false)
	st := store.NewMemory()
	c := NewCatalog(st, good.URL, good.Client())
	require.NoError(t, c.Refresh(context.Background()))

	// One half of the refresh failing must leave both halves untouched.
	bad := catalogServer(t, true)
	c2 := NewCatalog(st, bad.URL, bad.Client())
	require.NoError(t, c2.Load())
	require.Error(t, c2.Refresh(context.Background()))
	assert.Len(t, c2.Config().Stations, 3)
	_, ok := c2.Entity("p1")
	assert.True(t, ok)
}

func TestEmptyCatalogWithoutCache(t *testing.T) {
	c := NewCatalog(store.NewMemory(), "http://127.0.0.1:1", nil)
	require.NoError(t, c.Load())
	assert.Empty(t, c.Stations(models.EntityPatrol))
	assert.Empty(t, c.Entities(models.EntityPatrol, ""))
}

func TestStationsFilterByMode(t *testing.T) {
	srv := catalogServer(t, false)
	c := NewCatalog(store.NewMemory(), srv.URL, srv.Client())
	require.NoError(t, c.Refresh(context.Background()))

	patrol := c.Stations(models.EntityPatrol)
	require.Len(t, patrol, 2)
	assert.Equal(t, "knots", patrol[0].ID)
	// Untyped stations appear in every mode.
	assert.Equal(t, "open", patrol[1].ID)

	troop := c.Stations(models.EntityTroop)
	require.Len(t, troop, 2)
	assert.Equal(t, "flag", troop[0].ID)
}

func TestEntitiesFilterAndOrder(t *testing.T) {
	srv := catalogServer(t, false)
	c := NewCatalog(store.NewMemory(), srv.URL, srv.Client())
	require.NoError(t, c.Refresh(context.Background()))

	patrols := c.Entities(models.EntityPatrol, "")
	require.Len(t, patrols, 2)
	// Ordered by numeric troop number: 3 before 12.
	assert.Equal(t, "Hawks", patrols[0].Name)
	assert.Equal(t, "Eagles", patrols[1].Name)

	filtered := c.Entities(models.EntityPatrol, "eag")
	require.Len(t, filtered, 1)
	assert.Equal(t, "Eagles", filtered[0].Name)

	byTroop := c.Entities(models.EntityPatrol, "12")
	require.Len(t, byTroop, 1)
	assert.Equal(t, "Eagles", byTroop[0].Name)
}

func TestCreateEntityAppendsToCache(t *testing.T) {
	srv := catalogServer(t, false)
	st := store.NewMemory()
	c := NewCatalog(st, srv.URL, srv.Client())
	require.NoError(t, c.Refresh(context.Background()))

	created, err := c.CreateEntity(context.Background(), "Foxes", models.EntityPatrol, "7")
	require.NoError(t, err)
	assert.Equal(t, "p-new", created.ID)

	got, ok := c.Entity("p-new")
	require.True(t, ok)
	assert.Equal(t, "Foxes", got.Name)

	// The appended entity survives a reload from the store.
	c2 := NewCatalog(st, srv.URL, nil)
	require.NoError(t, c2.Load())
	_, ok = c2.Entity("p-new")
	assert.True(t, ok)
}
