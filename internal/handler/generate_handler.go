package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/campusforge/timetable-engine/internal/dto"
	"github.com/campusforge/timetable-engine/internal/orchestrator"
	"github.com/campusforge/timetable-engine/internal/service"
	apierrors "github.com/campusforge/timetable-engine/pkg/errors"
	"github.com/campusforge/timetable-engine/pkg/response"
)

// GenerateHandler exposes the Generator invocation contract over HTTP:
// a long-lived SSE stream for one generation run, a fire-and-forget
// queued alternative for callers that can't hold a connection open, and
// a cancellation endpoint, standing in for the original's WebSocket
// generate_timetable_ws endpoint.
type GenerateHandler struct {
	generator *service.Generator
	async     *service.AsyncGenerator
	validate  *validator.Validate
}

// NewGenerateHandler builds a GenerateHandler. async may be nil if the
// queued endpoint is not wired.
func NewGenerateHandler(generator *service.Generator, async *service.AsyncGenerator) *GenerateHandler {
	return &GenerateHandler{generator: generator, async: async, validate: validator.New()}
}

// Generate handles POST /timetables/:id/generate. It streams one
// Server-Sent Event per progress milestone, the SSE-over-HTTP
// equivalent of the original's ConnectionManager.send_progress pushes.
func (h *GenerateHandler) Generate(c *gin.Context) {
	timetableID := c.Param("id")

	var req dto.GenerateTimetableRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, apierrors.Clone(apierrors.ErrValidation, err.Error()))
			return
		}
		if err := h.validate.Struct(req); err != nil {
			response.Error(c, apierrors.Clone(apierrors.ErrValidation, err.Error()))
			return
		}
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, apierrors.ErrInternal)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	sink := orchestrator.ProgressSinkFunc(func(evt orchestrator.ProgressEvent) {
		payload, err := json.Marshal(dto.ProgressEventResponse{
			Level: evt.Level, Status: evt.Status, Percentage: evt.Percentage, Message: evt.Message,
		})
		if err != nil {
			return
		}
		c.SSEvent("progress", string(payload))
		flusher.Flush()
	})

	budget := time.Duration(req.LevelBudgetSeconds) * time.Second
	err := h.generator.Generate(c.Request.Context(), timetableID, budget, sink)
	if err != nil {
		appErr := apierrors.FromError(err)
		payload, _ := json.Marshal(appErr)
		c.SSEvent("error", string(payload))
		flusher.Flush()
		return
	}

	c.SSEvent("done", `{"status":"completed"}`)
	flusher.Flush()
}

// GenerateAsync handles POST /timetables/:id/generate-async — enqueues
// the run on the worker pool and returns immediately. Progress must be
// polled via GET /timetables/:id/slots or the generation-metadata
// field once the run completes; there is no live progress feed for a
// queued run, since nothing is holding a connection open to drive it.
func (h *GenerateHandler) GenerateAsync(c *gin.Context) {
	if h.async == nil {
		response.Error(c, apierrors.ErrInternal)
		return
	}
	timetableID := c.Param("id")

	var req dto.GenerateTimetableRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, apierrors.Clone(apierrors.ErrValidation, err.Error()))
			return
		}
		if err := h.validate.Struct(req); err != nil {
			response.Error(c, apierrors.Clone(apierrors.ErrValidation, err.Error()))
			return
		}
	}

	budget := time.Duration(req.LevelBudgetSeconds) * time.Second
	if err := h.async.Enqueue(timetableID, budget); err != nil {
		response.Error(c, apierrors.FromError(err))
		return
	}
	response.JSON(c, http.StatusAccepted, map[string]string{"status": "queued"}, nil)
}

// Cancel handles DELETE /timetables/:id/generate — signals the
// in-flight run's cancellation, honoured at its next milestone.
func (h *GenerateHandler) Cancel(c *gin.Context) {
	timetableID := c.Param("id")
	if !h.generator.Cancel(timetableID) {
		response.Error(c, apierrors.ErrNotFound)
		return
	}
	response.NoContent(c)
}
