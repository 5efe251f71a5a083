package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Prediction statuses reported by the backend. The state machine is the
// backend's: starting and processing are transient, succeeded and failed
// are terminal.
const (
	StatusStarting   = "starting"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
)

var (
	// ErrRequestFailed reports a transport-level failure talking to the
	// backend (non-2xx response, unreachable host, exhausted poll budget)
	ErrRequestFailed = errors.New("backend request failed")
	// ErrPredictionFailed reports a prediction that reached the failed
	// terminal status
	ErrPredictionFailed = errors.New("backend prediction failed")
)

// Input carries the prediction parameters in the backend's wire shape
type Input struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_new_tokens"`
	Temperature float64 `json:"temperature"`
}

// Client runs one prediction to a terminal state and returns its output
type Client interface {
	RunToCompletion(ctx context.Context, model string, input Input) (Output, error)
}

// ClientConfig contains configuration shared by the backend clients
type ClientConfig struct {
	APIBase      string
	APIToken     string
	PollInterval time.Duration
	// MaxPolls bounds the poll loop; zero keeps polling until a terminal
	// status is observed
	MaxPolls int
}

// Output is the backend's result, either a single string or an ordered
// sequence of fragments. It is decoded once at the client boundary;
// everything downstream sees the joined text.
type Output struct {
	fragments []string
	single    string
	multi     bool
}

// Single wraps one string as an Output
func Single(text string) Output {
	return Output{single: text}
}

// Fragments wraps an ordered fragment sequence as an Output
func Fragments(parts []string) Output {
	return Output{fragments: parts, multi: true}
}

// UnmarshalJSON accepts either a JSON string or an array of strings
func (o *Output) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Output{}
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*o = Single(single)
		return nil
	}
	var parts []string
	if err := json.Unmarshal(data, &parts); err == nil {
		*o = Fragments(parts)
		return nil
	}
	return fmt.Errorf("output is neither a string nor a list of strings: %s", data)
}

// MarshalJSON emits the wire shape the union was decoded from
func (o Output) MarshalJSON() ([]byte, error) {
	if o.multi {
		return json.Marshal(o.fragments)
	}
	return json.Marshal(o.single)
}

// Text returns the normalized output text, joining fragments in order
// with no separator
func (o Output) Text() string {
	if o.multi {
		return strings.Join(o.fragments, "")
	}
	return o.single
}

// prediction is the job document exchanged with the backend
type prediction struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output Output `json:"output"`
	Error  string `json:"error,omitempty"`
}

// createRequest is the job submission body
type createRequest struct {
	Version string `json:"version"`
	Input   Input  `json:"input"`
}

// VersionTable resolves backend model identifiers to version identifiers.
// A missing entry falls back to the default model's version.
type VersionTable struct {
	versions       map[string]string
	defaultVersion string
}

// NewVersionTable builds a version table with the given default model
func NewVersionTable(versions map[string]string, defaultModel string) *VersionTable {
	return &VersionTable{
		versions:       versions,
		defaultVersion: versions[defaultModel],
	}
}

// Version returns the version identifier for the given backend model
func (t *VersionTable) Version(model string) string {
	if v, ok := t.versions[model]; ok {
		return v
	}
	return t.defaultVersion
}
