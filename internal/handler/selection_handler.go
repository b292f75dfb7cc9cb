package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/furukawa-sg/sg-reserve-api/internal/dto"
	"github.com/furukawa-sg/sg-reserve-api/internal/service"
	appErrors "github.com/furukawa-sg/sg-reserve-api/pkg/errors"
	"github.com/furukawa-sg/sg-reserve-api/pkg/response"
)

// SelectionHandler exposes the cascading selection wizard.
type SelectionHandler struct {
	service *service.SelectionService
}

// NewSelectionHandler constructs a selection handler.
func NewSelectionHandler(svc *service.SelectionService) *SelectionHandler {
	return &SelectionHandler{service: svc}
}

// Start godoc
// @Summary Open a selection session
// @Tags Selection
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /api/reservation/sessions [post]
func (h *SelectionHandler) Start(c *gin.Context) {
	snapshot, err := h.service.Start(c.Request.Context(), authFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, snapshot)
}

// Get godoc
// @Summary Read a selection session
// @Tags Selection
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /api/reservation/sessions/{id} [get]
func (h *SelectionHandler) Get(c *gin.Context) {
	snapshot, err := h.service.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot)
}

// SelectKind godoc
// @Summary Choose the exam kind
// @Tags Selection
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SelectKindRequest true "Kind"
// @Success 200 {object} response.Envelope
// @Router /api/reservation/sessions/{id}/kind [post]
func (h *SelectionHandler) SelectKind(c *gin.Context) {
	var req dto.SelectKindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	snapshot, err := h.service.SelectKind(c.Request.Context(), c.Param("id"), req.Kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot)
}

// SelectCategory godoc
// @Summary Choose the exam category
// @Tags Selection
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SelectCategoryRequest true "Category"
// @Success 200 {object} response.Envelope
// @Router /api/reservation/sessions/{id}/category [post]
func (h *SelectionHandler) SelectCategory(c *gin.Context) {
	var req dto.SelectCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	snapshot, err := h.service.SelectCategory(c.Request.Context(), c.Param("id"), req.Category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot)
}

// SelectOrg godoc
// @Summary Choose the school and fetch its exams
// @Tags Selection
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SelectOrgRequest true "Area and org"
// @Success 200 {object} response.Envelope
// @Router /api/reservation/sessions/{id}/org [post]
func (h *SelectionHandler) SelectOrg(c *gin.Context) {
	var req dto.SelectOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	snapshot, err := h.service.SelectOrg(c.Request.Context(), c.Param("id"), authFromContext(c), req)
	if err != nil {
		// A failed fetch still moved the session forward; return the snapshot
		// so the client can render the failure state.
		if snapshot != nil {
			response.JSON(c, http.StatusOK, snapshot)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot)
}

// Toggle godoc
// @Summary Toggle an exam in the selection set
// @Tags Selection
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.ToggleExamRequest true "Exam id"
// @Success 200 {object} response.Envelope
// @Router /api/reservation/sessions/{id}/toggle [post]
func (h *SelectionHandler) Toggle(c *gin.Context) {
	var req dto.ToggleExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	snapshot, err := h.service.ToggleExam(c.Request.Context(), c.Param("id"), req.ExamID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot)
}

// Filter godoc
// @Summary Narrow the grid to one faculty and term
// @Tags Selection
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.FacTermFilterRequest true "Filter key"
// @Success 200 {object} response.Envelope
// @Router /api/reservation/sessions/{id}/filter [post]
func (h *SelectionHandler) Filter(c *gin.Context) {
	var req dto.FacTermFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	snapshot, err := h.service.SetFacTermFilter(c.Request.Context(), c.Param("id"), req.Key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot)
}

// Advance godoc
// @Summary Hand the selection off to the check step
// @Tags Selection
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.AdvanceRequest true "Student info"
// @Success 201 {object} response.Envelope
// @Router /api/reservation/sessions/{id}/advance [post]
func (h *SelectionHandler) Advance(c *gin.Context) {
	var req dto.AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Advance(c.Request.Context(), c.Param("id"), subjectFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Delete godoc
// @Summary Discard a selection session
// @Tags Selection
// @Param id path string true "Session ID"
// @Success 204
// @Router /api/reservation/sessions/{id} [delete]
func (h *SelectionHandler) Delete(c *gin.Context) {
	if err := h.service.Discard(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
