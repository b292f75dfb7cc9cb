package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/furukawa-sg/sg-reserve-api/internal/dto"
	"github.com/furukawa-sg/sg-reserve-api/internal/service"
	appErrors "github.com/furukawa-sg/sg-reserve-api/pkg/errors"
	"github.com/furukawa-sg/sg-reserve-api/pkg/response"
)

// SignupHandler exposes the approval-based registration form.
type SignupHandler struct {
	service *service.SignupService
}

// NewSignupHandler constructs a signup handler.
func NewSignupHandler(svc *service.SignupService) *SignupHandler {
	return &SignupHandler{service: svc}
}

// Create godoc
// @Summary Request an account
// @Tags Signup
// @Accept json
// @Produce json
// @Param payload body dto.SignupRequest true "Signup form"
// @Success 201 {object} response.Envelope
// @Router /api/signup-requests [post]
func (h *SignupHandler) Create(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Create(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"status": "accepted"})
}
