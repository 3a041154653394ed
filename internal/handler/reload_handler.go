package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/helper-roster/internal/middleware"
	"github.com/noah-isme/helper-roster/pkg/jobs"
	"github.com/noah-isme/helper-roster/pkg/response"
)

type reloadRunner interface {
	Trigger(reason string) (jobs.Job, error)
	Status(id string) (jobs.Job, error)
}

// ReloadHandler queues roster reloads.
type ReloadHandler struct {
	reloads reloadRunner
}

// NewReloadHandler constructs a ReloadHandler.
func NewReloadHandler(reloads reloadRunner) *ReloadHandler {
	return &ReloadHandler{reloads: reloads}
}

// Trigger godoc
// @Summary Queue a roster reload
// @Tags Reloads
// @Produce json
// @Security BearerAuth
// @Success 202 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /reloads [post]
func (h *ReloadHandler) Trigger(c *gin.Context) {
	reason := "api"
	if operator := middleware.Operator(c); operator != "" {
		reason = "api:" + operator
	}
	job, err := h.reloads.Trigger(reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Status godoc
// @Summary Reload job status
// @Tags Reloads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reloads/{id} [get]
func (h *ReloadHandler) Status(c *gin.Context) {
	job, err := h.reloads.Status(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}
