package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deenkids/deenkids-backend/internal/http/response"
	"github.com/deenkids/deenkids-backend/internal/requestdata"
	"github.com/deenkids/deenkids-backend/internal/services"
)

type SessionHandler struct {
	sessionService services.LiveSessionService
	learnerService services.LearnerService
}

func NewSessionHandler(sessionService services.LiveSessionService, learnerService services.LearnerService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, learnerService: learnerService}
}

// StartOrReuse opens (or rejoins) the live session for one of the caller's
// learners. Time-quota rejection comes back as allowed=false.
func (sh *SessionHandler) StartOrReuse(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	var req struct {
		Learner   string `json:"learner"`
		ScholarID string `json:"scholar_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	learner, err := sh.learnerService.ResolveOwned(c.Request.Context(), rd.UserID, req.Learner)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	scholarID := uuid.Nil
	if req.ScholarID != "" {
		scholarID, err = uuid.Parse(req.ScholarID)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}

	result, err := sh.sessionService.StartOrReuse(c.Request.Context(), rd.UserID, learner.ID, scholarID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (sh *SessionHandler) Start(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessionID, ok := sh.sessionID(c)
	if !ok {
		return
	}
	session, err := sh.sessionService.Start(c.Request.Context(), sessionID, rd.UserID, rd.Role)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

func (sh *SessionHandler) Join(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessionID, ok := sh.sessionID(c)
	if !ok {
		return
	}

	var req struct {
		Learner string `json:"learner"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	learnerID := uuid.Nil
	if req.Learner != "" {
		learner, err := sh.learnerService.ResolveOwned(c.Request.Context(), rd.UserID, req.Learner)
		if err != nil {
			response.RespondServiceError(c, err)
			return
		}
		learnerID = learner.ID
	}

	session, err := sh.sessionService.Join(c.Request.Context(), sessionID, rd.UserID, learnerID, rd.Role)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

func (sh *SessionHandler) AdvancePosition(c *gin.Context) {
	sessionID, ok := sh.sessionID(c)
	if !ok {
		return
	}

	var req struct {
		Surah int `json:"surah"`
		Ayah  int `json:"ayah"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	session, err := sh.sessionService.AdvancePosition(c.Request.Context(), sessionID, req.Surah, req.Ayah)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

func (sh *SessionHandler) End(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessionID, ok := sh.sessionID(c)
	if !ok {
		return
	}
	session, err := sh.sessionService.End(c.Request.Context(), sessionID, rd.UserID, rd.Role)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

func (sh *SessionHandler) Get(c *gin.Context) {
	sessionID, ok := sh.sessionID(c)
	if !ok {
		return
	}
	session, attendance, err := sh.sessionService.Get(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": session, "attendance": attendance})
}

func (sh *SessionHandler) RequestAccess(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessionID, ok := sh.sessionID(c)
	if !ok {
		return
	}
	req, err := sh.sessionService.RequestAccess(c.Request.Context(), sessionID, rd.UserID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"request": req})
}

func (sh *SessionHandler) ResolveAccess(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	var req struct {
		Approve bool `json:"approve"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	resolved, err := sh.sessionService.ResolveAccess(c.Request.Context(), requestID, rd.UserID, rd.Role, req.Approve)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"request": resolved})
}

func (sh *SessionHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return uuid.Nil, false
	}
	return id, true
}
