package backend

import (
	"context"
	"net/http"

	"github.com/mirrorlake/repligate/internal/logger"
)

// BlockingClient implements Client with a single delegate-and-wait call:
// the backend holds the request open until the prediction is terminal.
type BlockingClient struct {
	config   ClientConfig
	versions *VersionTable
	client   *http.Client
	logger   *logger.Logger
}

// NewBlockingClient creates a delegate-and-wait backend client
func NewBlockingClient(cfg ClientConfig, versions *VersionTable) *BlockingClient {
	return &BlockingClient{
		config:   cfg,
		versions: versions,
		client:   &http.Client{},
		logger:   logger.GetLogger().WithComponent("backend_wait"),
	}
}

func (c *BlockingClient) RunToCompletion(ctx context.Context, model string, input Input) (Output, error) {
	version := c.versions.Version(model)
	c.logger.Debug("Running blocking prediction for model %s version %s", model, version)

	pred, err := submitPrediction(ctx, c.client, c.config, version, input, "wait")
	if err != nil {
		return Output{}, err
	}
	c.logger.Debug("Blocking prediction %s returned status %s", pred.ID, pred.Status)

	return terminalOutput(pred)
}
