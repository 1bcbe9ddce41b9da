package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deenkids/deenkids-backend/internal/http/response"
	"github.com/deenkids/deenkids-backend/internal/requestdata"
	"github.com/deenkids/deenkids-backend/internal/services"
)

type LearnerHandler struct {
	learnerService services.LearnerService
	quotaService   services.QuotaService
}

func NewLearnerHandler(learnerService services.LearnerService, quotaService services.QuotaService) *LearnerHandler {
	return &LearnerHandler{learnerService: learnerService, quotaService: quotaService}
}

func (lh *LearnerHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var req struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	learner, err := lh.learnerService.CreateLearner(c.Request.Context(), rd.UserID, req.Name, req.Age)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"learner": learner})
}

func (lh *LearnerHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	learners, err := lh.learnerService.ListLearners(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"learners": learners})
}

func (lh *LearnerHandler) GetDashboard(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	snapshot, err := lh.learnerService.GetDashboard(c.Request.Context(), rd.UserID, c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, snapshot)
}

func (lh *LearnerHandler) UpdateDailyLimit(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := lh.learnerService.UpdateDailyLimit(c.Request.Context(), rd.UserID, c.Param("id"), req.Minutes); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "minutes": req.Minutes})
}

// LogActivity adds screen-time minutes to today's tally for a learner.
func (lh *LearnerHandler) LogActivity(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	learner, err := lh.learnerService.ResolveOwned(c.Request.Context(), rd.UserID, c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if err := lh.quotaService.LogActivity(c.Request.Context(), learner.ID, req.Minutes); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
