package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRewriter(url string) *RewriteService {
	return &RewriteService{
		client:  &http.Client{Timeout: 5 * time.Second},
		apiURL:  url,
		apiKey:  "test-key",
		model:   "test-model",
		referer: "http://localhost:8501",
		title:   "Customer Support Assistant",
	}
}

func completionBody(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":` + string(mustJSON(content)) + `}}]}`
}

func mustJSON(v interface{}) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}

func TestRewriteSuccess(t *testing.T) {
	const polished = "The product does not work. Could you please look into fixing it?"

	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "http://localhost:8501", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "Customer Support Assistant", r.Header.Get("X-Title"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody(polished)))
	}))
	defer srv.Close()

	s := newTestRewriter(srv.URL)

	input := "the product dont work plz fix"
	out, err := s.Rewrite(context.Background(), input, "EN")
	require.NoError(t, err)

	assert.NotEmpty(t, out)
	assert.NotEqual(t, input, out)
	assert.NotContains(t, out, "dont")
	assert.NotContains(t, out, "plz")

	// Upstream request shape
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, input, got.Messages[1].Content)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.Equal(t, 1000, got.MaxTokens)
}

func TestRewriteStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := newTestRewriter(srv.URL)

	out, err := s.Rewrite(context.Background(), "hello", "EN")
	assert.ErrorIs(t, err, ErrBadStatus)
	assert.Empty(t, out)
}

func TestRewriteEmptyResponseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := newTestRewriter(srv.URL)

	_, err := s.Rewrite(context.Background(), "hello", "EN")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestRewriteParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	s := newTestRewriter(srv.URL)

	_, err := s.Rewrite(context.Background(), "hello", "EN")
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestRewriteTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	s := newTestRewriter(srv.URL)

	_, err := s.Rewrite(context.Background(), "hello", "EN")
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestRewriteUnsupportedLanguage(t *testing.T) {
	s := newTestRewriter("http://unused")

	_, err := s.Rewrite(context.Background(), "hello", "DE")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	assert.True(t, SupportedLanguage("EN"))
	assert.True(t, SupportedLanguage("FR"))
	assert.False(t, SupportedLanguage("en"))
}

// The language only selects the system prompt; the user text must reach
// the endpoint byte-identical in both variants.
func TestRewriteLanguageSelectsOnlySystemPrompt(t *testing.T) {
	var requests []completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)
		w.Write([]byte(completionBody("ok")))
	}))
	defer srv.Close()

	s := newTestRewriter(srv.URL)

	const input = "bonjour, mon produit est cassé"
	_, err := s.Rewrite(context.Background(), input, "EN")
	require.NoError(t, err)
	_, err = s.Rewrite(context.Background(), input, "FR")
	require.NoError(t, err)

	require.Len(t, requests, 2)
	assert.Equal(t, requests[0].Messages[1], requests[1].Messages[1])
	assert.NotEqual(t, requests[0].Messages[0].Content, requests[1].Messages[0].Content)
}
