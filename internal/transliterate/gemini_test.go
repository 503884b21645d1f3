package transliterate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}

func newTestGemini(t *testing.T, status int, response string) *Gemini {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent"), "unexpected path %s", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Contents, 1) && assert.NotEmpty(t, req.Contents[0].Parts) {
			assert.Contains(t, req.Contents[0].Parts[0].Text, "'hello'")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, response)
	}))
	t.Cleanup(server.Close)

	g, err := NewGemini(context.Background(), GeminiConfig{APIKey: "test-key", Model: "test-model", BaseURL: server.URL + "/"})
	require.NoError(t, err)
	return g
}

func geminiAnswer(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"role":"model","parts":[{"text":%q}]},"finishReason":"STOP"}]}`, text)
}

func TestGemini_Transliterate(t *testing.T) {
	kana, ok, err := newTestGemini(t, http.StatusOK, geminiAnswer("ハロー\n")).Transliterate(context.Background(), "hello")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ハロー", kana)
}

func TestGemini_NoneIsMiss(t *testing.T) {
	_, ok, err := newTestGemini(t, http.StatusOK, geminiAnswer("NONE")).Transliterate(context.Background(), "hello")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGemini_NoCandidates(t *testing.T) {
	_, _, err := newTestGemini(t, http.StatusOK, `{"candidates":[]}`).Transliterate(context.Background(), "hello")
	assert.Error(t, err)
}

func TestGemini_APIError(t *testing.T) {
	_, _, err := newTestGemini(t, http.StatusBadRequest, `{"error":{"code":400,"message":"invalid model","status":"INVALID_ARGUMENT"}}`).
		Transliterate(context.Background(), "hello")
	assert.Error(t, err)
}
