package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rrens/chat-widget/internal/llm"
	"github.com/Rrens/chat-widget/internal/llm/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Reply(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"response":" Hi! ","done":true,"eval_count":7}`))
	}))
	defer srv.Close()

	p := ollama.NewProvider(srv.URL, "")
	resp, err := p.Reply(context.Background(), llm.Request{Message: "hello"}, "")
	require.NoError(t, err)

	assert.Equal(t, "Hi!", resp.Reply)
	assert.Equal(t, "llama3", resp.Model)
	assert.Equal(t, 7, resp.TokensUsed)
	assert.Equal(t, "llama3", got["model"])
	assert.True(t, strings.Contains(got["prompt"].(string), "User: hello"))
}

func TestProvider_ReplyStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := ollama.NewProvider(srv.URL, "mistral").Reply(context.Background(), llm.Request{Message: "x"}, "")
	assert.Error(t, err)
}
