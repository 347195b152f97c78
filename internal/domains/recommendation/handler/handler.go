package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/recommendation/service"
	"library-backend/internal/shared/response"
)

type RecommendationHandler struct {
	service service.ServiceInterface
}

func NewRecommendationHandler(svc service.ServiceInterface) *RecommendationHandler {
	return &RecommendationHandler{
		service: svc,
	}
}

// ════════════════════════════════════════════════════════════════
// READ: GET /v1/recommendations
// ════════════════════════════════════════════════════════════════

func (h *RecommendationHandler) Get(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	resp, err := h.service.GetRecommendations(c.Request.Context(), userID)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}

	response.Success(c, http.StatusOK, resp)
}
