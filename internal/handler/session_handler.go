package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/furukawa-sg/sg-reserve-api/internal/repository"
	appErrors "github.com/furukawa-sg/sg-reserve-api/pkg/errors"
	"github.com/furukawa-sg/sg-reserve-api/pkg/response"
)

// SessionHandler manages per-credential remembered state: the grid view-mode
// preference and the logout wipe.
type SessionHandler struct {
	sessions *repository.SessionRepository
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(sessions *repository.SessionRepository) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type viewPrefPayload struct {
	ViewMode string `json:"view_mode" binding:"required"`
}

// GetPreferences godoc
// @Summary Read remembered UI preferences
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/session/preferences [get]
func (h *SessionHandler) GetPreferences(c *gin.Context) {
	subject := subjectFromContext(c)
	mode, err := h.sessions.LoadViewPref(c.Request.Context(), subject)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.sessions.LoadLastStudent(c.Request.Context(), subject)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"view_mode": mode, "last_student": student})
}

// PutPreferences godoc
// @Summary Store the grid view-mode preference
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body viewPrefPayload true "Preference"
// @Success 200 {object} response.Envelope
// @Router /api/session/preferences [put]
func (h *SessionHandler) PutPreferences(c *gin.Context) {
	var req viewPrefPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.sessions.SaveViewPref(c.Request.Context(), subjectFromContext(c), req.ViewMode); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"view_mode": req.ViewMode})
}

// Logout godoc
// @Summary Forget everything remembered for this credential
// @Tags Session
// @Success 204
// @Router /api/session [delete]
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.sessions.ClearSubject(c.Request.Context(), subjectFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
