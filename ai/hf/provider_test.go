package hf

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poiesic/newsroom/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(host string) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(host),
		ai.WithToken("hf_test"),
		ai.WithTimeout(2*time.Second),
	)
}

func TestTopicClassifier_Rank(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sequence":"x","labels":["Science","Politics","Sport"],"scores":[0.7,0.2,0.1]}`))
	}))
	defer srv.Close()

	classifier, err := NewTopicClassifier(testConfig(srv.URL))
	require.NoError(t, err)

	ranked, err := classifier.Rank(context.Background(), "New telescope images", []string{"Politics", "Science", "Sport"})
	require.NoError(t, err)

	assert.Equal(t, "/models/facebook/bart-large-mnli", gotPath)
	assert.Equal(t, "Bearer hf_test", gotAuth)
	assert.Equal(t, "New telescope images", gotBody["inputs"])
	params := gotBody["parameters"].(map[string]any)
	assert.Equal(t, false, params["multi_label"])
	assert.Equal(t, []any{"Politics", "Science", "Sport"}, params["candidate_labels"])

	require.Len(t, ranked, 3)
	assert.Equal(t, "Science", ranked[0].Label)
	assert.InDelta(t, 0.7, ranked[0].Score, 1e-9)
}

func TestTopicClassifier_RankPairShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"Sport","score":0.1},{"label":"Finance","score":0.9}]`))
	}))
	defer srv.Close()

	classifier, err := NewTopicClassifier(testConfig(srv.URL))
	require.NoError(t, err)

	ranked, err := classifier.Rank(context.Background(), "Stocks", []string{"Finance", "Sport"})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Finance", ranked[0].Label)
}

func TestTopicClassifier_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusServiceUnavailable, `{"error":"Model is currently loading"}`},
		{"not json", http.StatusOK, `<html>oops</html>`},
		{"mismatched arrays", http.StatusOK, `{"labels":["A","B"],"scores":[1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			classifier, err := NewTopicClassifier(testConfig(srv.URL))
			require.NoError(t, err)

			_, err = classifier.Rank(context.Background(), "text", []string{"A", "B"})
			assert.Error(t, err)
		})
	}
}

func TestTopicClassifier_NoLabels(t *testing.T) {
	classifier, err := NewTopicClassifier(testConfig("http://127.0.0.1:1"))
	require.NoError(t, err)

	ranked, err := classifier.Rank(context.Background(), "text", nil)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestEntityExtractor_Tag(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/dslim/bert-base-NER", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`[
			{"entity_group":"PER","score":0.99,"word":"Ada Lovelace","start":0,"end":12},
			{"entity_group":"LOC","score":0.97,"word":"London","start":22,"end":28}
		]`))
	}))
	defer srv.Close()

	extractor, err := NewEntityExtractor(testConfig(srv.URL))
	require.NoError(t, err)

	tokens, err := extractor.Tag(context.Background(), "Ada Lovelace lived in London")
	require.NoError(t, err)

	params := gotBody["parameters"].(map[string]any)
	assert.Equal(t, "simple", params["aggregation_strategy"])

	require.Len(t, tokens, 2)
	assert.Equal(t, "PER", tokens[0].EntityGroup)
	assert.Equal(t, 22, tokens[1].Start)
	assert.Equal(t, []string{"Ada Lovelace", "London"}, ai.GroupTokens(tokens))
}

func TestEntityExtractor_EmptyTextSkipsCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	extractor, err := NewEntityExtractor(testConfig(srv.URL))
	require.NoError(t, err)

	tokens, err := extractor.Tag(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, tokens)
	assert.False(t, called)
}

func TestNewProvider(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		provider, err := NewProvider(testConfig("http://localhost:8080"))
		require.NoError(t, err)
		assert.NotNil(t, provider.TopicClassifier())
		assert.NotNil(t, provider.EntityExtractor())
		assert.NoError(t, provider.Close())
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewProvider(ai.NewConfig(ai.WithHost("")))
		assert.Error(t, err)
	})
}
