package transliterate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(t *testing.T, answer string, status int) *OpenAI {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Messages, 2) {
			assert.Contains(t, req.Messages[1].Content, "'hello'")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, answer)
	}))
	t.Cleanup(server.Close)

	o, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)
	return o
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{})
	assert.Error(t, err)
}

func TestOpenAI_Transliterate(t *testing.T) {
	kana, ok, err := newTestOpenAI(t, "ハロー", http.StatusOK).Transliterate(context.Background(), "hello")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ハロー", kana)
}

func TestOpenAI_NoneIsMiss(t *testing.T) {
	_, ok, err := newTestOpenAI(t, "NONE", http.StatusOK).Transliterate(context.Background(), "hello")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenAI_APIError(t *testing.T) {
	_, _, err := newTestOpenAI(t, "", http.StatusInternalServerError).Transliterate(context.Background(), "hello")
	assert.Error(t, err)
}
