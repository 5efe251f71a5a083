package orchestrator

import (
	"context"
	"errors"

	"github.com/mirrorlake/repligate/internal/backend"
	"github.com/mirrorlake/repligate/internal/logger"
	"github.com/mirrorlake/repligate/internal/models"
	"github.com/mirrorlake/repligate/internal/prompt"
	"github.com/mirrorlake/repligate/internal/resolver"
)

// Defaults applied when the request omits the field
const (
	defaultMaxTokens   = 500
	defaultTemperature = 0.7
)

// Result is what the transport shell serializes back to the client.
// Stream selects event-stream framing over plain JSON.
type Result struct {
	Body   interface{}
	Stream bool
}

// Orchestrator drives one request through resolution, prompt compilation,
// backend invocation, and response formatting. It owns error
// classification; no failure crosses this boundary unclassified.
type Orchestrator struct {
	resolver *resolver.Resolver
	backend  backend.Client
	logger   *logger.Logger
}

// New creates an orchestrator over the given resolver and backend client
func New(res *resolver.Resolver, client backend.Client) *Orchestrator {
	return &Orchestrator{
		resolver: res,
		backend:  client,
		logger:   logger.GetLogger().WithComponent("orchestrator"),
	}
}

// ChatCompletion handles a chat-shaped request
func (o *Orchestrator) ChatCompletion(ctx context.Context, req *models.ChatCompletionRequest) (*Result, *models.APIError) {
	if req.Model == "" || len(req.Messages) == 0 {
		return nil, models.NewInvalidRequestError("model and messages are required")
	}

	backendModel := o.resolver.Resolve(req.Model)
	o.logger.Debug("Resolved model %s to %s", req.Model, backendModel)

	out, err := o.backend.RunToCompletion(ctx, backendModel, backend.Input{
		Prompt:      prompt.Compile(req.Messages),
		MaxTokens:   intOrDefault(req.MaxTokens, defaultMaxTokens),
		Temperature: floatOrDefault(req.Temperature, defaultTemperature),
	})
	if err != nil {
		return nil, o.classify(err, req.Model)
	}

	if req.Stream {
		return &Result{Body: newChatCompletionChunk(req.Model, out), Stream: true}, nil
	}
	return &Result{Body: newChatCompletion(req.Model, out)}, nil
}

// Completion handles a legacy text completion request. The prompt is
// passed to the backend verbatim.
func (o *Orchestrator) Completion(ctx context.Context, req *models.CompletionRequest) (*Result, *models.APIError) {
	if req.Model == "" || req.Prompt == "" {
		return nil, models.NewInvalidRequestError("model and prompt are required")
	}

	backendModel := o.resolver.Resolve(req.Model)
	o.logger.Debug("Resolved model %s to %s", req.Model, backendModel)

	out, err := o.backend.RunToCompletion(ctx, backendModel, backend.Input{
		Prompt:      req.Prompt,
		MaxTokens:   intOrDefault(req.MaxTokens, defaultMaxTokens),
		Temperature: floatOrDefault(req.Temperature, defaultTemperature),
	})
	if err != nil {
		return nil, o.classify(err, req.Model)
	}

	return &Result{Body: newCompletion(req.Model, out)}, nil
}

// classify maps a backend failure to the closed error taxonomy. The
// detail is logged here; clients get a generic message.
func (o *Orchestrator) classify(err error, model string) *models.APIError {
	if errors.Is(err, backend.ErrPredictionFailed) || errors.Is(err, backend.ErrRequestFailed) {
		o.logger.WithError(err).Error("Backend call failed for model %s", model)
		return models.NewUpstreamError("upstream model call failed")
	}
	o.logger.WithError(err).Error("Unexpected failure handling model %s", model)
	return models.NewInternalError("internal server error")
}

func intOrDefault(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

func floatOrDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}
