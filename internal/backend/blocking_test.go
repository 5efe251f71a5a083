package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBlockingClient(baseURL string) *BlockingClient {
	return NewBlockingClient(ClientConfig{
		APIBase:  baseURL,
		APIToken: "test-token",
	}, NewVersionTable(map[string]string{"llama-2-70b-chat": "ver-70b"}, "llama-2-70b-chat"))
}

func TestBlockingClientRunToCompletion(t *testing.T) {
	var created createRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/predictions", r.URL.Path)
		assert.Equal(t, "Token test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "wait", r.Header.Get("Prefer"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))

		json.NewEncoder(w).Encode(prediction{
			ID:     "p1",
			Status: StatusSucceeded,
			Output: Fragments([]string{"Hel", "lo"}),
		})
	}))
	defer srv.Close()

	client := newTestBlockingClient(srv.URL)
	out, err := client.RunToCompletion(context.Background(), "llama-2-70b-chat", Input{
		Prompt:      "Human: hi\n\nAssistant: ",
		MaxTokens:   500,
		Temperature: 0.7,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Hello", out.Text())
	assert.Equal(t, "ver-70b", created.Version)
}

func TestBlockingClientPredictionFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(prediction{ID: "p1", Status: StatusFailed, Error: "model crashed"})
	}))
	defer srv.Close()

	client := newTestBlockingClient(srv.URL)
	_, err := client.RunToCompletion(context.Background(), "llama-2-70b-chat", Input{Prompt: "p"})

	assert.ErrorIs(t, err, ErrPredictionFailed)
	assert.Contains(t, err.Error(), "model crashed")
}

func TestBlockingClientNonTerminalResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(prediction{ID: "p1", Status: StatusProcessing})
	}))
	defer srv.Close()

	client := newTestBlockingClient(srv.URL)
	_, err := client.RunToCompletion(context.Background(), "llama-2-70b-chat", Input{Prompt: "p"})

	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestBlockingClientRejectedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestBlockingClient(srv.URL)
	_, err := client.RunToCompletion(context.Background(), "llama-2-70b-chat", Input{Prompt: "p"})

	assert.ErrorIs(t, err, ErrRequestFailed)
}
