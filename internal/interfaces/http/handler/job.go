package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	syncapp "github.com/ppm/backend/internal/application/sync"
	"github.com/ppm/backend/internal/domain/bulk"
)

// JobHandler exposes the bulk job progress polling endpoint
type JobHandler struct {
	BaseHandler
	progress *syncapp.ProgressService
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(progress *syncapp.ProgressService) *JobHandler {
	return &JobHandler{progress: progress}
}

// JobProgressResponse represents the progress of one bulk job
type JobProgressResponse struct {
	JobID          string                     `json:"job_id"`
	Kind           string                     `json:"kind"`
	ScopeID        string                     `json:"scope_id,omitempty"`
	Status         string                     `json:"status"`
	TotalCount     int                        `json:"total_count"`
	ProcessedCount int                        `json:"processed_count"`
	Percentage     float64                    `json:"percentage"`
	Result         string                     `json:"result,omitempty"`
	ErrorMessage   string                     `json:"error_message,omitempty"`
	ErrorDetails   []bulk.ProgressErrorDetail `json:"error_details,omitempty"`
}

func toJobProgressResponse(progress *bulk.JobProgress) JobProgressResponse {
	return JobProgressResponse{
		JobID:          progress.JobID.String(),
		Kind:           progress.Kind.String(),
		ScopeID:        progress.ScopeID,
		Status:         progress.Status.String(),
		TotalCount:     progress.TotalCount,
		ProcessedCount: progress.ProcessedCount,
		Percentage:     progress.Percentage(),
		Result:         progress.Result,
		ErrorMessage:   progress.ErrorMessage,
		ErrorDetails:   progress.ErrorDetails,
	}
}

// RegisterRoutes registers job routes
func (h *JobHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs/:job_id/progress", h.GetProgress)
}

// GetProgress returns the current progress of a bulk job for pollers
func (h *JobHandler) GetProgress(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}

	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		h.BadRequest(c, "invalid job ID")
		return
	}

	progress, err := h.progress.GetProgress(c.Request.Context(), tenantID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toJobProgressResponse(progress))
}
