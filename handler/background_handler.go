package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ambient-bg/store"
	"ambient-bg/worker"
)

type StatsProvider interface {
	Stats() worker.Stats
}

type BackgroundHandler struct {
	state *store.StateStore
	jobs  *store.JobStore
	stats StatsProvider
}

func NewBackgroundHandler(state *store.StateStore, jobs *store.JobStore, stats StatsProvider) *BackgroundHandler {
	return &BackgroundHandler{
		state: state,
		jobs:  jobs,
		stats: stats,
	}
}

// Register mounts every route on router.
func (h *BackgroundHandler) Register(router gin.IRouter) {
	router.GET("/healthz", h.Health)

	api := router.Group("/api")
	api.GET("/background", h.GetBackground)
	api.GET("/jobs", h.ListJobs)
	api.GET("/jobs/:id", h.GetJob)
	api.GET("/status", h.GetStatus)
}

func (h *BackgroundHandler) GetBackground(c *gin.Context) {
	state, err := h.state.Current()
	if errors.Is(err, store.ErrNotReady) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"video_url": state.ActiveVideoURL})
}

func (h *BackgroundHandler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, h.jobs.GetAll())
}

func (h *BackgroundHandler) GetJob(c *gin.Context) {
	job, err := h.jobs.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *BackgroundHandler) GetStatus(c *gin.Context) {
	resp := gin.H{"ready": false}
	if state, err := h.state.Current(); err == nil {
		resp["ready"] = true
		resp["background"] = state
	}
	if h.stats != nil {
		resp["cycles"] = h.stats.Stats()
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BackgroundHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
