package orchestrator

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorlake/repligate/internal/backend"
	"github.com/mirrorlake/repligate/internal/models"
)

// Response formatting. Every envelope echoes the inbound model identifier,
// never the resolved backend model, and carries a zeroed usage block since
// the backend reports no token counts.

func newChatCompletion(model string, out backend.Output) *models.ChatCompletionResponse {
	return &models.ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []models.ChatCompletionChoice{
			{
				Message: &models.ChatMessage{
					Role:    "assistant",
					Content: strings.TrimSpace(out.Text()),
				},
				FinishReason: "stop",
			},
		},
	}
}

// newChatCompletionChunk wraps the full output as a single chunk-shaped
// envelope. Streaming is a framing contract here, not incremental
// delivery; the transport emits this as one event.
func newChatCompletionChunk(model string, out backend.Output) *models.ChatCompletionResponse {
	return &models.ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []models.ChatCompletionChoice{
			{
				Delta: &models.ChatMessage{
					Role:    "assistant",
					Content: strings.TrimSpace(out.Text()),
				},
				FinishReason: "stop",
			},
		},
	}
}

func newCompletion(model string, out backend.Output) *models.CompletionResponse {
	return &models.CompletionResponse{
		ID:      "cmpl-" + uuid.NewString(),
		Object:  "text_completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []models.CompletionChoice{
			{
				Text:         strings.TrimSpace(out.Text()),
				FinishReason: "stop",
			},
		},
	}
}
