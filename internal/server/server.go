package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mirrorlake/repligate/internal/config"
	"github.com/mirrorlake/repligate/internal/models"
	"github.com/mirrorlake/repligate/internal/orchestrator"
)

// New assembles the gin router: CORS, bearer auth on /v1, the completion
// endpoints, the model listing, and the catch-all 404 envelope.
func New(cfg *config.Config, orch *orchestrator.Orchestrator) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.Use(authMiddleware(cfg.Server.APIKey))
	v1.POST("/chat/completions", handleChatCompletions(orch))
	v1.POST("/completions", handleCompletions(orch))
	v1.GET("/models", handleListModels(cfg))

	r.NoRoute(func(c *gin.Context) {
		writeError(c, models.NewNotFoundError("unknown route: "+c.Request.URL.Path))
	})

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// authMiddleware enforces the shared-secret precondition before any
// request reaches the orchestrator
func authMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, models.NewConfigurationError("proxy API key is not configured"))
			return
		}
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortWithError(c, models.NewAuthenticationError("missing or malformed Authorization header"))
			return
		}
		if token != apiKey {
			abortWithError(c, models.NewAuthenticationError("invalid API key"))
			return
		}
		c.Next()
	}
}

func handleChatCompletions(orch *orchestrator.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ChatCompletionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, models.NewInvalidRequestError("invalid request body: "+err.Error()))
			return
		}

		res, apiErr := orch.ChatCompletion(c.Request.Context(), &req)
		if apiErr != nil {
			writeError(c, apiErr)
			return
		}
		writeResult(c, res)
	}
}

func handleCompletions(orch *orchestrator.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CompletionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, models.NewInvalidRequestError("invalid request body: "+err.Error()))
			return
		}

		res, apiErr := orch.Completion(c.Request.Context(), &req)
		if apiErr != nil {
			writeError(c, apiErr)
			return
		}
		writeResult(c, res)
	}
}

func handleListModels(cfg *config.Config) gin.HandlerFunc {
	created := time.Now().Unix()
	return func(c *gin.Context) {
		ids := make([]string, 0, len(cfg.Models.Mappings))
		for id := range cfg.Models.Mappings {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		list := models.ModelList{Object: "list", Data: make([]models.Model, 0, len(ids))}
		for _, id := range ids {
			m := models.Model{
				ID:      id,
				Object:  "model",
				Created: created,
				OwnedBy: "repligate",
			}
			if mc, ok := cfg.Models.ModelConfigs[id]; ok {
				m.MaxTokens = mc.MaxTokens
				m.SupportsStreaming = mc.SupportsStreaming
			}
			list.Data = append(list.Data, m)
		}
		c.JSON(http.StatusOK, list)
	}
}

// writeResult serializes a success either as plain JSON or as a single
// event-stream frame followed by the done sentinel
func writeResult(c *gin.Context, res *orchestrator.Result) {
	if !res.Stream {
		c.JSON(http.StatusOK, res.Body)
		return
	}

	data, err := json.Marshal(res.Body)
	if err != nil {
		writeError(c, models.NewInternalError("failed to encode response"))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}

func writeError(c *gin.Context, apiErr *models.APIError) {
	c.JSON(apiErr.Status, apiErr.Envelope())
}

func abortWithError(c *gin.Context, apiErr *models.APIError) {
	c.AbortWithStatusJSON(apiErr.Status, apiErr.Envelope())
}
