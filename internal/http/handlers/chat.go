package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/deenkids/deenkids-backend/internal/http/response"
	"github.com/deenkids/deenkids-backend/internal/requestdata"
	"github.com/deenkids/deenkids-backend/internal/services"
)

type ChatHandler struct {
	quotaService services.QuotaService
}

func NewChatHandler(quotaService services.QuotaService) *ChatHandler {
	return &ChatHandler{quotaService: quotaService}
}

// Allow consumes one chat attempt from the daily allowance. A rejection is a
// 200 with allowed=false, not an HTTP error.
func (ch *ChatHandler) Allow(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	result, err := ch.quotaService.CheckAndCountChat(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}
