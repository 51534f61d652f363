package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/coyotecrew/camporee-collator/handlers"
	"github.com/coyotecrew/camporee-collator/live"
	"github.com/coyotecrew/camporee-collator/models"
	"github.com/coyotecrew/camporee-collator/repositories"
	"github.com/coyotecrew/camporee-collator/routes"
	"github.com/coyotecrew/camporee-collator/services"
	"github.com/coyotecrew/camporee-collator/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const (
	testSecret     = "test-secret"
	testPassphrase = "open sesame"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repositories.EnsureSchema(context.Background(), db))

	gamesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(gamesDir, "game1_knots.json"), []byte(`{
		"id": "knots",
		"name": "Knot Tying",
		"type": "patrol",
		"fields": [{"id": "total", "label": "Total", "type": "number", "kind": "points"}]
	}`), 0o644))

	hub := live.NewHub(nil)
	go hub.Run()

	scoreRepo := repositories.NewSQLScoreRepository(db)
	entityRepo := repositories.NewSQLEntityRepository(db)

	hash, err := utils.HashPassword(testPassphrase)
	require.NoError(t, err)

	catalogService, err := services.NewCatalogService(gamesDir)
	require.NoError(t, err)

	h := routes.Handlers{
		Score:     handlers.NewScoreHandler(services.NewScoreService(scoreRepo, hub, nil)),
		Entity:    handlers.NewEntityHandler(services.NewEntityService(entityRepo, utils.UUIDGenerator{}, utils.SystemClock)),
		Catalog:   handlers.NewCatalogHandler(catalogService),
		Admin:     handlers.NewAdminHandler(services.NewAdminService(scoreRepo, entityRepo, hash, testSecret, nil), services.NewExportService(gamesDir, nil, nil, nil)),
		WebSocket: handlers.NewWebSocketHandler(hub, nil),
	}

	router := chi.NewRouter()
	routes.SetupRoutes(router, h, testSecret, nil)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any, token string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func adminToken(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/admin/login", map[string]string{"passphrase": testPassphrase}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestSubmitScoreUpsertsByUUID(t *testing.T) {
	srv := newTestServer(t)

	packet := map[string]any{
		"uuid":          "u1",
		"game_id":       "knots",
		"entity_id":     "p1",
		"score_payload": map[string]any{"total": 42},
		"timestamp":     1700000000000,
		"judge_name":    "Pat",
	}

	resp := postJSON(t, srv.URL+"/api/scores", packet, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var score models.Score
	decode(t, resp, &score)
	assert.Equal(t, "u1", score.UUID)

	// Redelivery of the same uuid overwrites and reports 200.
	packet["score_payload"] = map[string]any{"total": 50}
	resp = postJSON(t, srv.URL+"/api/scores", packet, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &score)
	assert.Equal(t, 50.0, score.ScorePayload["total"])

	var scores []models.Score
	listResp, err := http.Get(srv.URL + "/api/scores/knots")
	require.NoError(t, err)
	decode(t, listResp, &scores)
	require.Len(t, scores, 1)
}

func TestSubmitScoreRejectsIncompletePackets(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/scores", map[string]any{
		"game_id":       "knots",
		"entity_id":     "p1",
		"score_payload": map[string]any{},
	}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	decode(t, resp, &body)
	assert.Contains(t, body, "error")
}

func TestEntityEndpointsUseBareJSON(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/entities", map[string]string{
		"name":         "Eagles",
		"type":         "patrol",
		"troop_number": "12",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The created entity comes back as a bare object, not an envelope.
	var created models.Entity
	decode(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Eagles", created.Name)

	listResp, err := http.Get(srv.URL + "/api/entities")
	require.NoError(t, err)
	var list []models.Entity
	decode(t, listResp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestCreateEntityValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/entities", map[string]string{
		"name": "Eagles", "type": "squad", "troop_number": "12",
	}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGamesCatalogShape(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/games.json")
	require.NoError(t, err)
	var payload struct {
		Games         []models.Station `json:"games"`
		CommonScoring []models.Field   `json:"common_scoring"`
	}
	decode(t, resp, &payload)
	require.Len(t, payload.Games, 1)
	assert.Equal(t, "knots", payload.Games[0].ID)
	require.Len(t, payload.Games[0].Fields, 1)
	assert.Equal(t, models.FieldNumber, payload.Games[0].Fields[0].Type)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/admin/full-reset", map[string]string{}, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/admin/full-reset", map[string]string{}, "not-a-token")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminLoginRejectsWrongPassphrase(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/admin/login", map[string]string{"passphrase": "wrong"}, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFullResetWipesScoresAndEntities(t *testing.T) {
	srv := newTestServer(t)
	token := adminToken(t, srv)

	resp := postJSON(t, srv.URL+"/api/entities", map[string]string{
		"name": "Eagles", "type": "patrol", "troop_number": "12",
	}, "")
	resp.Body.Close()
	resp = postJSON(t, srv.URL+"/api/scores", map[string]any{
		"uuid": "u1", "game_id": "knots", "entity_id": "p1",
		"score_payload": map[string]any{"total": 1},
		"timestamp":     1700000000000,
	}, "")
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/admin/full-reset", map[string]string{}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/api/entities")
	require.NoError(t, err)
	var entities []models.Entity
	decode(t, listResp, &entities)
	assert.Empty(t, entities)

	scoresResp, err := http.Get(srv.URL + "/api/scores/knots")
	require.NoError(t, err)
	var scores []models.Score
	decode(t, scoresResp, &scores)
	assert.Empty(t, scores)
}

func TestResetScoresKeepsRoster(t *testing.T) {
	srv := newTestServer(t)
	token := adminToken(t, srv)

	resp := postJSON(t, srv.URL+"/api/entities", map[string]string{
		"name": "Eagles", "type": "patrol", "troop_number": "12",
	}, "")
	resp.Body.Close()
	resp = postJSON(t, srv.URL+"/api/scores", map[string]any{
		"uuid": "u1", "game_id": "knots", "entity_id": "p1",
		"score_payload": map[string]any{"total": 1},
		"timestamp":     1700000000000,
	}, "")
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/admin/reset-scores", map[string]string{}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/api/entities")
	require.NoError(t, err)
	var entities []models.Entity
	decode(t, listResp, &entities)
	assert.Len(t, entities, 1)
}

func TestRosterReport(t *testing.T) {
	srv := newTestServer(t)
	token := adminToken(t, srv)

	for _, e := range []map[string]string{
		{"name": "Eagles", "type": "patrol", "troop_number": "12"},
		{"name": "Hawks", "type": "patrol", "troop_number": "3"},
		{"name": "Troop 12", "type": "troop", "troop_number": "12"},
	} {
		resp := postJSON(t, srv.URL+"/api/entities", e, "")
		resp.Body.Close()
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/roster", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	var report struct {
		Counts map[string]int  `json:"counts"`
		Total  int             `json:"total"`
		Sample []models.Entity `json:"sample"`
	}
	decode(t, resp, &report)
	assert.Equal(t, 2, report.Counts["patrol"])
	assert.Equal(t, 1, report.Counts["troop"])
	assert.Equal(t, 3, report.Total)
	assert.Len(t, report.Sample, 3)
}

func TestExportUnavailableWithoutStorage(t *testing.T) {
	srv := newTestServer(t)
	token := adminToken(t, srv)

	resp := postJSON(t, srv.URL+"/api/admin/export", map[string]string{"title": "Fall Camporee"}, token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
