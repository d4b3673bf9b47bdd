package textgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractiveShortTextPassesThrough(t *testing.T) {
	s, err := NewExtractive().Summarise(context.Background(), "Emissions fell by 12% in 2024.", 150)
	require.NoError(t, err)
	assert.Equal(t, "Emissions fell by 12% in 2024.", s)
}

func TestExtractiveKeepsLeadingSentences(t *testing.T) {
	text := strings.Repeat("This sentence is about forty characters. ", 50)
	s, err := NewExtractive().Summarise(context.Background(), text, 25)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(s), 100)
	assert.True(t, strings.HasPrefix(s, "This sentence"))
}

func TestExtractiveOversizedSentenceHardCut(t *testing.T) {
	text := strings.Repeat("x", 1000)
	s, err := NewExtractive().Summarise(context.Background(), text, 10)
	require.NoError(t, err)
	assert.Len(t, s, 40)
}

func TestHTTPClientSummarise(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req inferenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 150, req.Parameters.MaxLength)
		assert.Equal(t, 50, req.Parameters.MinLength)

		_ = json.NewEncoder(w).Encode([]inferenceResult{{SummaryText: "A short summary."}})
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, "secret", 0, 0)
	s, err := c.Summarise(context.Background(), "Long report text.", 150)
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", s)
}

func TestHTTPClientBareObjectResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(inferenceResult{SummaryText: "Bare object."})
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, "", 0, 0)
	s, err := c.Summarise(context.Background(), "text", 100)
	require.NoError(t, err)
	assert.Equal(t, "Bare object.", s)
}

func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, "", 0, 0)
	_, err := c.Summarise(context.Background(), "text", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
