package embedding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faqbot/config"
)

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e := NewHashingEmbedder(64)

	a, err := e.Embed([]string{"reset password", "access moodle"})
	require.NoError(t, err)
	b, err := e.Embed([]string{"reset password", "access moodle"})
	require.NoError(t, err)

	require.Len(t, a, 2)
	assert.Equal(t, a, b)
	assert.Len(t, a[0], 64)
	assert.NotEqual(t, a[0], a[1])
}

func TestHashingEmbedder_EmptyText(t *testing.T) {
	e := NewHashingEmbedder(16)

	vecs, err := e.Embed([]string{""})
	require.NoError(t, err)
	for _, x := range vecs[0] {
		assert.Zero(t, x)
	}
}

func TestHashingEmbedder_Defaults(t *testing.T) {
	e := NewHashingEmbedder(0)
	assert.Equal(t, 384, e.Dimension())
	assert.Equal(t, "hashing-v1", e.ModelName())
}

func TestCharTrigrams(t *testing.T) {
	assert.Equal(t, []string{"^ab", "ab$"}, charTrigrams("ab"))
	assert.Equal(t, []string{"^a$"}, charTrigrams("a"))
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)

		// answer out of order to check index handling
		data := make([]map[string]any, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(i), 1},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data":   data,
		})
	}))
	defer srv.Close()

	t.Setenv("TEST_OPENAI_KEY", "test-key")
	e, err := NewOpenAICompatibleEmbedder("TEST_OPENAI_KEY", "text-embedding-3-small", srv.URL+"/v1")
	require.NoError(t, err)
	assert.Equal(t, 1536, e.Dimension())

	vecs, err := e.Embed([]string{"a", "b", ""})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []float32{0, 1}, vecs[0])
	assert.Equal(t, []float32{1, 1}, vecs[1])
	assert.Equal(t, []float32{2, 1}, vecs[2])
}

func TestOpenAIEmbedder_ShortResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer srv.Close()

	t.Setenv("TEST_OPENAI_KEY", "test-key")
	e, err := NewOpenAICompatibleEmbedder("TEST_OPENAI_KEY", "text-embedding-3-small", srv.URL+"/v1")
	require.NoError(t, err)

	_, err = e.Embed([]string{"a"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIEmbedder_MissingKey(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "")
	_, err := NewOpenAIEmbedder("TEST_OPENAI_KEY", "text-embedding-3-small")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	e, err := New(config.EmbeddingConfig{Provider: "hashing", Dimension: 32})
	require.NoError(t, err)
	assert.Equal(t, 32, e.Dimension())

	e, err = New(config.EmbeddingConfig{Provider: "ollama", Model: "all-minilm"})
	require.NoError(t, err)
	assert.Equal(t, 384, e.Dimension())

	_, err = New(config.EmbeddingConfig{Provider: "word2vec"})
	assert.Error(t, err)
}
