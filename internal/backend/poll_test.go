package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pollBackend serves a scripted prediction lifecycle: the submission
// response followed by one fetch response per poll.
type pollBackend struct {
	t       *testing.T
	submit  prediction
	fetches []prediction
	gets    int
	posts   int
	created createRequest
}

func (b *pollBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/predictions", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(b.t, http.MethodPost, r.Method)
		assert.Equal(b.t, "Token test-token", r.Header.Get("Authorization"))
		require.NoError(b.t, json.NewDecoder(r.Body).Decode(&b.created))
		b.posts++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(b.submit)
	})
	mux.HandleFunc("/v1/predictions/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(b.t, http.MethodGet, r.Method)
		assert.Equal(b.t, "Token test-token", r.Header.Get("Authorization"))
		require.Less(b.t, b.gets, len(b.fetches), "more polls than scripted responses")
		pred := b.fetches[b.gets]
		b.gets++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pred)
	})
	return mux
}

func newTestPollClient(t *testing.T, baseURL string, maxPolls int) (*PollClient, *int) {
	client := NewPollClient(ClientConfig{
		APIBase:      baseURL,
		APIToken:     "test-token",
		PollInterval: time.Second,
		MaxPolls:     maxPolls,
	}, NewVersionTable(map[string]string{"llama-2-70b-chat": "ver-70b"}, "llama-2-70b-chat"))

	sleeps := 0
	client.sleep = func(ctx context.Context, d time.Duration) error {
		assert.Equal(t, time.Second, d)
		sleeps++
		return nil
	}
	return client, &sleeps
}

func TestPollClientRunToCompletion(t *testing.T) {
	backend := &pollBackend{
		t:      t,
		submit: prediction{ID: "p1", Status: StatusStarting},
		fetches: []prediction{
			{ID: "p1", Status: StatusProcessing},
			{ID: "p1", Status: StatusSucceeded, Output: Single("X")},
		},
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client, sleeps := newTestPollClient(t, srv.URL, 0)
	out, err := client.RunToCompletion(context.Background(), "llama-2-70b-chat", Input{
		Prompt:      "Human: hi\n\nAssistant: ",
		MaxTokens:   500,
		Temperature: 0.7,
	})

	assert.NoError(t, err)
	assert.Equal(t, "X", out.Text())
	assert.Equal(t, 2, *sleeps, "one wait per non-terminal status")
	assert.Equal(t, 2, backend.gets)

	assert.Equal(t, "ver-70b", backend.created.Version)
	assert.Equal(t, "Human: hi\n\nAssistant: ", backend.created.Input.Prompt)
	assert.Equal(t, 500, backend.created.Input.MaxTokens)
	assert.Equal(t, 0.7, backend.created.Input.Temperature)
}

func TestPollClientUsesDefaultVersionForUnknownModel(t *testing.T) {
	backend := &pollBackend{
		t:      t,
		submit: prediction{ID: "p1", Status: StatusSucceeded, Output: Single("ok")},
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client, _ := newTestPollClient(t, srv.URL, 0)
	_, err := client.RunToCompletion(context.Background(), "unmapped-model", Input{Prompt: "p"})

	assert.NoError(t, err)
	assert.Equal(t, "ver-70b", backend.created.Version)
}

func TestPollClientPredictionFailed(t *testing.T) {
	backend := &pollBackend{
		t:      t,
		submit: prediction{ID: "p1", Status: StatusStarting},
		fetches: []prediction{
			{ID: "p1", Status: StatusFailed, Error: "boom"},
		},
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client, sleeps := newTestPollClient(t, srv.URL, 0)
	_, err := client.RunToCompletion(context.Background(), "llama-2-70b-chat", Input{Prompt: "p"})

	assert.ErrorIs(t, err, ErrPredictionFailed)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, *sleeps)
}

func TestPollClientSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client, sleeps := newTestPollClient(t, srv.URL, 0)
	_, err := client.RunToCompletion(context.Background(), "llama-2-70b-chat", Input{Prompt: "p"})

	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, 0, *sleeps)
}

func TestPollClientFetchRejectedIsFatal(t *testing.T) {
	gets := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/predictions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(prediction{ID: "p1", Status: StatusStarting})
	})
	mux.HandleFunc("/v1/predictions/", func(w http.ResponseWriter, r *http.Request) {
		gets++
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, _ := newTestPollClient(t, srv.URL, 0)
	_, err := client.RunToCompletion(context.Background(), "llama-2-70b-chat", Input{Prompt: "p"})

	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, 1, gets, "a failed status fetch is not retried")
}

func TestPollClientMaxPollsExhausted(t *testing.T) {
	backend := &pollBackend{
		t:      t,
		submit: prediction{ID: "p1", Status: StatusStarting},
		fetches: []prediction{
			{ID: "p1", Status: StatusProcessing},
			{ID: "p1", Status: StatusProcessing},
			{ID: "p1", Status: StatusProcessing},
		},
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client, _ := newTestPollClient(t, srv.URL, 3)
	_, err := client.RunToCompletion(context.Background(), "llama-2-70b-chat", Input{Prompt: "p"})

	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "not terminal after 3 polls")
	assert.Equal(t, 3, backend.gets)
}

func TestPollClientCancelledDuringWait(t *testing.T) {
	backend := &pollBackend{
		t:      t,
		submit: prediction{ID: "p1", Status: StatusStarting},
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client, _ := newTestPollClient(t, srv.URL, 0)
	client.sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.RunToCompletion(ctx, "llama-2-70b-chat", Input{Prompt: "p"})
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), context.Canceled.Error())
	assert.Equal(t, 0, backend.gets, "no poll loop left running after cancellation")
}

func TestSleepContext(t *testing.T) {
	err := sleepContext(context.Background(), time.Millisecond)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = sleepContext(ctx, time.Minute)
	assert.True(t, errors.Is(err, context.Canceled))
}
