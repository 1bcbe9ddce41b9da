package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deenkids/deenkids-backend/internal/http/response"
	"github.com/deenkids/deenkids-backend/internal/requestdata"
	"github.com/deenkids/deenkids-backend/internal/services"
)

type ProgressHandler struct {
	progressService services.ProgressService
	learnerService  services.LearnerService
}

func NewProgressHandler(progressService services.ProgressService, learnerService services.LearnerService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, learnerService: learnerService}
}

// Record ingests one lesson interaction. Repeat completions are accepted and
// answered with the unchanged totals.
func (ph *ProgressHandler) Record(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	var input services.RecordProgressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	learner, err := ph.learnerService.ResolveOwned(c.Request.Context(), rd.UserID, c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	result, err := ph.progressService.RecordProgress(c.Request.Context(), learner.ID, input)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (ph *ProgressHandler) GetLedger(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	learner, err := ph.learnerService.ResolveOwned(c.Request.Context(), rd.UserID, c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	entries, err := ph.progressService.GetLedger(c.Request.Context(), learner.ID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": entries})
}
