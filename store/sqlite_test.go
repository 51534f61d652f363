package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRoundTrip(t *testing.T) {
	st, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer st.Close()

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	found, err := st.Get("missing", &record{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, st.Set("rec", record{Name: "eagles", Count: 3}))

	var got record
	found, err = st.Get("rec", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, record{Name: "eagles", Count: 3}, got)

	// Overwrite under the same key.
	require.NoError(t, st.Set("rec", record{Name: "hawks", Count: 1}))
	_, err = st.Get("rec", &got)
	require.NoError(t, err)
	assert.Equal(t, "hawks", got.Name)

	require.NoError(t, st.Delete("rec"))
	found, err = st.Get("rec", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLitePersistsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.db")

	st, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, st.Set("k", "v"))
	require.NoError(t, st.Close())

	st2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer st2.Close()

	var v string
	found, err := st2.Get("k", &v)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v", v)
}

func TestResetPreservesNamedKeys(t *testing.T) {
	st, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Set("judge_info", map[string]string{"name": "Pat"}))
	require.NoError(t, st.Set("coyote_drafts", map[string]string{"a": "b"}))
	require.NoError(t, st.Set("coyote_score_queue", []string{"x"}))

	require.NoError(t, st.Reset("judge_info"))

	var judge map[string]string
	found, err := st.Get("judge_info", &judge)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Pat", judge["name"])

	var drafts map[string]string
	found, err = st.Get("coyote_drafts", &drafts)
	require.NoError(t, err)
	assert.False(t, found)

	var q []string
	found, err = st.Get("coyote_score_queue", &q)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResetWithoutPreserveWipesEverything(t *testing.T) {
	st, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Set("a", 1))
	require.NoError(t, st.Set("b", 2))
	require.NoError(t, st.Reset())

	var v int
	found, err := st.Get("a", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryMatchesSQLiteSemantics(t *testing.T) {
	for name, open := range map[string]func() Store{
		"memory": func() Store { return NewMemory() },
		"sqlite": func() Store {
			st, err := OpenSQLite(":memory:")
			require.NoError(t, err)
			return st
		},
	} {
		t.Run(name, func(t *testing.T) {
			st := open()
			defer st.Close()

			require.NoError(t, st.Set("k", map[string]any{"n": 1.5}))
			var got map[string]any
			found, err := st.Get("k", &got)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, 1.5, got["n"])
		})
	}
}
