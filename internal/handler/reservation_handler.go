package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/furukawa-sg/sg-reserve-api/internal/dto"
	"github.com/furukawa-sg/sg-reserve-api/internal/service"
	appErrors "github.com/furukawa-sg/sg-reserve-api/pkg/errors"
	"github.com/furukawa-sg/sg-reserve-api/pkg/response"
)

// HandoffTokenHeader carries the selection hand-off token into the check and
// submit endpoints.
const HandoffTokenHeader = "X-Handoff-Token"

// ReservationHandler exposes the check step and the final submission.
type ReservationHandler struct {
	service *service.ReservationService
}

// NewReservationHandler constructs a reservation handler.
func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: svc}
}

func handoffToken(c *gin.Context) (string, bool) {
	token := c.GetHeader(HandoffTokenHeader)
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing X-Handoff-Token header"))
		return "", false
	}
	return token, true
}

// Check godoc
// @Summary Load the confirmation view for a hand-off
// @Tags Reservation
// @Produce json
// @Param X-Handoff-Token header string true "Hand-off token"
// @Success 200 {object} response.Envelope
// @Router /api/reservations/check [get]
func (h *ReservationHandler) Check(c *gin.Context) {
	token, ok := handoffToken(c)
	if !ok {
		return
	}
	view, err := h.service.LoadCheck(c.Request.Context(), authFromContext(c), subjectFromContext(c), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// UpdateRow godoc
// @Summary Patch one print-job row
// @Tags Reservation
// @Accept json
// @Produce json
// @Param X-Handoff-Token header string true "Hand-off token"
// @Param examID path string true "Exam ID"
// @Param payload body dto.UpdateRowRequest true "Row patch"
// @Success 200 {object} response.Envelope
// @Router /api/reservations/check/rows/{examID} [patch]
func (h *ReservationHandler) UpdateRow(c *gin.Context) {
	token, ok := handoffToken(c)
	if !ok {
		return
	}
	var req dto.UpdateRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	row, err := h.service.UpdateRow(c.Request.Context(), token, c.Param("examID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row)
}

// Submit godoc
// @Summary Submit the reservation
// @Tags Reservation
// @Accept json
// @Produce json
// @Param X-Handoff-Token header string true "Hand-off token"
// @Param payload body dto.SubmitRequest true "Student info"
// @Success 201 {object} response.Envelope
// @Router /api/reservations/submit [post]
func (h *ReservationHandler) Submit(c *gin.Context) {
	token, ok := handoffToken(c)
	if !ok {
		return
	}
	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Submit(c.Request.Context(), authFromContext(c), subjectFromContext(c), token, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Done godoc
// @Summary Completion screen metadata
// @Tags Reservation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/reservations/done [get]
func (h *ReservationHandler) Done(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Done())
}
