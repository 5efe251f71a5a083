package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mirrorlake/repligate/internal/logger"
)

// PollClient implements Client with the submit-then-poll protocol: create
// a job, then re-fetch its status at a fixed interval until terminal.
type PollClient struct {
	config   ClientConfig
	versions *VersionTable
	client   *http.Client
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *logger.Logger
}

// NewPollClient creates a polling backend client
func NewPollClient(cfg ClientConfig, versions *VersionTable) *PollClient {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &PollClient{
		config:   cfg,
		versions: versions,
		client:   &http.Client{},
		sleep:    sleepContext,
		logger:   logger.GetLogger().WithComponent("backend_poll"),
	}
}

func (c *PollClient) RunToCompletion(ctx context.Context, model string, input Input) (Output, error) {
	version := c.versions.Version(model)
	c.logger.Debug("Submitting prediction for model %s version %s", model, version)

	pred, err := submitPrediction(ctx, c.client, c.config, version, input, "")
	if err != nil {
		return Output{}, err
	}
	c.logger.Debug("Prediction %s submitted with status %s", pred.ID, pred.Status)

	polls := 0
	for pred.Status == StatusStarting || pred.Status == StatusProcessing {
		if c.config.MaxPolls > 0 && polls >= c.config.MaxPolls {
			return Output{}, fmt.Errorf("%w: prediction %s not terminal after %d polls", ErrRequestFailed, pred.ID, polls)
		}
		if err := c.sleep(ctx, c.config.PollInterval); err != nil {
			return Output{}, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		pred, err = fetchPrediction(ctx, c.client, c.config, pred.ID)
		if err != nil {
			return Output{}, err
		}
		polls++
		c.logger.Debug("Prediction %s status %s after %d polls", pred.ID, pred.Status, polls)
	}

	return terminalOutput(pred)
}

// terminalOutput maps a terminal prediction to its output or error
func terminalOutput(pred *prediction) (Output, error) {
	switch pred.Status {
	case StatusSucceeded:
		return pred.Output, nil
	case StatusFailed:
		return Output{}, fmt.Errorf("%w: %s", ErrPredictionFailed, pred.Error)
	default:
		return Output{}, fmt.Errorf("%w: unexpected prediction status %q", ErrRequestFailed, pred.Status)
	}
}

// sleepContext waits for the duration or until the context is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
