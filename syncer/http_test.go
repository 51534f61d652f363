package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coyotecrew/camporee-collator/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSubmitterPostsPacket(t *testing.T) {
	var got models.Packet
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/scores", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sub := NewHTTPSubmitter(srv.URL+"/", srv.Client())
	err := sub.Submit(context.Background(), pkt("a"))
	require.NoError(t, err)
	assert.Equal(t, "a", got.UUID)
	assert.Equal(t, "knots", got.GameID)
}

func TestHTTPSubmitterReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"missing uuid"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	sub := NewHTTPSubmitter(srv.URL, srv.Client())
	err := sub.Submit(context.Background(), pkt("a"))
	var re *RejectedError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.StatusCode)
	assert.Contains(t, re.Body, "missing uuid")
}

func TestHTTPSubmitterTransportErrorIsNotRejection(t *testing.T) {
	sub := NewHTTPSubmitter("http://127.0.0.1:1", nil)
	err := sub.Submit(context.Background(), pkt("a"))
	require.Error(t, err)
	var re *RejectedError
	assert.False(t, errors.As(err, &re))
}
