package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yksanjo/soundraw-podcast-music/internal/api/middleware"
	apperrors "github.com/yksanjo/soundraw-podcast-music/internal/errors"
	"github.com/yksanjo/soundraw-podcast-music/internal/logger"
	"github.com/yksanjo/soundraw-podcast-music/internal/models"
	"github.com/yksanjo/soundraw-podcast-music/internal/progress"
)

// PodcastMusicService is what the podcast handlers need from the service layer
type PodcastMusicService interface {
	Generate(ctx context.Context, req *models.ClipRequest) (*models.NormalizedResult, error)
	JobStatus(ctx context.Context, requestID string) (*models.CompositionJob, error)
}

type PodcastHandler struct {
	service PodcastMusicService
}

func NewPodcastHandler(service PodcastMusicService) *PodcastHandler {
	return &PodcastHandler{service: service}
}

// Generate runs one clip generation and returns the NormalizedResult
func (h *PodcastHandler) Generate(c *gin.Context) {
	var req models.ClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apperrors.ErrCodeValidation})
		return
	}

	userID, _ := middleware.GetUserID(c)
	logger.Info("📨 Podcast music request", logger.Fields{
		"request_id": middleware.GetRequestID(c),
		"user_id":    userID,
		"clip_kind":  string(req.PodcastType),
	})

	result, err := h.service.Generate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GenerateStream runs a generation and streams progress as server-sent events:
// "progress" per stage and poll attempt, then "done" with the result or "error".
func (h *PodcastHandler) GenerateStream(c *gin.Context) {
	var req models.ClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apperrors.ErrCodeValidation})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering
	c.Writer.Flush()

	// the poll loop runs on this goroutine, so events are written in order
	reporter := progress.FuncReporter(func(update progress.Update) {
		c.SSEvent("progress", update)
		c.Writer.Flush()
	})
	ctx := progress.WithReporter(c.Request.Context(), reporter)

	result, err := h.service.Generate(ctx, &req)
	if err != nil {
		logger.Warn("Podcast music stream failed", logger.Fields{
			"request_id": middleware.GetRequestID(c),
			"error":      err.Error(),
		})
		c.SSEvent("error", errorBody(err))
		c.Writer.Flush()
		return
	}

	c.SSEvent("done", result)
	c.Writer.Flush()
}

// JobStatus fetches one backend job, e.g. to re-check it after a poll timeout
func (h *PodcastHandler) JobStatus(c *gin.Context) {
	job, err := h.service.JobStatus(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(apperrors.CodeOf(err))
	if errors.Is(err, context.Canceled) {
		status = 499 // client closed request
	} else if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, errorBody(err))
}

func errorBody(err error) gin.H {
	return gin.H{
		"error":     err.Error(),
		"code":      apperrors.CodeOf(err),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}
