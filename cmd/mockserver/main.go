package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Mock prediction backend for local development. Jobs advance one status
// per poll: starting, then processing until -steps polls have happened,
// then succeeded. A prompt containing "fail please" produces a failed
// prediction.

type mockJob struct {
	prompt string
	polls  int
}

type mockStore struct {
	mu   sync.Mutex
	jobs map[string]*mockJob
	next int
}

func main() {
	port := flag.String("port", "8001", "Port to run the server on")
	steps := flag.Int("steps", 2, "Polls before a prediction succeeds")
	flag.Parse()

	store := &mockStore{jobs: make(map[string]*mockJob)}

	r := gin.Default()

	r.POST("/v1/predictions", func(c *gin.Context) {
		var req struct {
			Version string `json:"version"`
			Input   struct {
				Prompt string `json:"prompt"`
			} `json:"input"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		store.mu.Lock()
		store.next++
		id := fmt.Sprintf("pred_%d", store.next)
		store.jobs[id] = &mockJob{prompt: req.Input.Prompt}
		store.mu.Unlock()

		c.JSON(http.StatusCreated, gin.H{"id": id, "status": "starting"})
	})

	r.GET("/v1/predictions/:id", func(c *gin.Context) {
		store.mu.Lock()
		defer store.mu.Unlock()

		job, ok := store.jobs[c.Param("id")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "prediction not found"})
			return
		}
		job.polls++

		switch {
		case strings.Contains(job.prompt, "fail please"):
			c.JSON(http.StatusOK, gin.H{
				"id":     c.Param("id"),
				"status": "failed",
				"error":  "mock prediction failure",
			})
		case job.polls < *steps:
			c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": "processing"})
		default:
			c.JSON(http.StatusOK, gin.H{
				"id":     c.Param("id"),
				"status": "succeeded",
				"output": []string{"This is a mock ", "completion for: ", job.prompt},
			})
		}
	})

	if err := r.Run(":" + *port); err != nil {
		log.Fatal(err)
	}
}
