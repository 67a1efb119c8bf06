package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/findy/internal/model"
)

func TestParseMovieStubs(t *testing.T) {
	content := "Here are your picks:\n" +
		`[{"title":"Heat","genres":["Action"],"poster_url":"http://p/1.jpg","platforms":["Netflix"],"recommendation_reason":"classic"}]` +
		"\nEnjoy!"

	stubs, err := ParseMovieStubs(content)
	require.NoError(t, err)
	require.Len(t, stubs, 1)
	assert.Equal(t, "Heat", stubs[0].Title)
	assert.Equal(t, []string{"Action"}, stubs[0].Genres)
	assert.Equal(t, "classic", stubs[0].Reason)
}

func TestParseMovieStubsNoArray(t *testing.T) {
	_, err := ParseMovieStubs("Sorry, I cannot recommend movies right now.")
	assert.ErrorIs(t, err, model.ErrInvalidResponse)
}

func TestParseMovieStubsMalformedArray(t *testing.T) {
	_, err := ParseMovieStubs(`[{"title": "Heat", "genres": }]`)
	assert.ErrorIs(t, err, model.ErrInvalidResponse)
}

func TestSuggestSuccess(t *testing.T) {
	var gotAuth string
	var gotReq ChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		content := `[{"title":"Heat","genres":["Action"],"poster_url":"","platforms":["Netflix"],"recommendation_reason":"ok"},` +
			`{"title":"Se7en","genres":["Thriller"],"poster_url":"","platforms":["Max"],"recommendation_reason":"ok"}]`
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewSuggestionClient(server.URL, "test-key", "gpt-4o-mini", 0.8, 5*time.Second)
	stubs, err := client.Suggest(context.Background(), "recommend movies")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	assert.InDelta(t, 0.8, gotReq.Temperature, 0.001)
	require.Len(t, stubs, 2)
	assert.Equal(t, "Se7en", stubs[1].Title)
}

func TestSuggestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "rate limited"},
		})
	}))
	defer server.Close()

	client := NewSuggestionClient(server.URL, "test-key", "gpt-4o-mini", 0.8, 5*time.Second)
	_, err := client.Suggest(context.Background(), "recommend movies")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestSuggestNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := NewSuggestionClient(server.URL, "test-key", "gpt-4o-mini", 0.8, 5*time.Second)
	_, err := client.Suggest(context.Background(), "recommend movies")
	assert.ErrorIs(t, err, model.ErrInvalidResponse)
}

func TestSuggestMissingKey(t *testing.T) {
	client := NewSuggestionClient("http://localhost", "", "gpt-4o-mini", 0.8, time.Second)
	_, err := client.Suggest(context.Background(), "prompt")
	assert.Error(t, err)
}
