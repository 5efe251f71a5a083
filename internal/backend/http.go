package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// submitPrediction POSTs a job creation request. An empty prefer string
// submits asynchronously; "wait" asks the backend to block until the
// prediction is terminal.
func submitPrediction(ctx context.Context, client *http.Client, cfg ClientConfig, version string, input Input, prefer string) (*prediction, error) {
	body, err := json.Marshal(createRequest{Version: version, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.APIBase+"/v1/predictions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+cfg.APIToken)
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	return doPredictionRequest(client, req)
}

// fetchPrediction GETs the current state of a submitted job
func fetchPrediction(ctx context.Context, client *http.Client, cfg ClientConfig, id string) (*prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.APIBase+"/v1/predictions/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+cfg.APIToken)

	return doPredictionRequest(client, req)
}

func doPredictionRequest(client *http.Client, req *http.Request) (*prediction, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrRequestFailed, resp.StatusCode)
	}

	var pred prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
	}
	return &pred, nil
}
