package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/furukawa-sg/sg-reserve-api/internal/service"
	"github.com/furukawa-sg/sg-reserve-api/pkg/response"
)

// ReceiptHandler serves stored receipt PDFs behind signed tokens.
type ReceiptHandler struct {
	service *service.ReceiptService
}

// NewReceiptHandler constructs a receipt handler.
func NewReceiptHandler(svc *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{service: svc}
}

// Download godoc
// @Summary Download a reservation receipt
// @Tags Receipts
// @Produce application/pdf
// @Param token path string true "Signed receipt token"
// @Success 200
// @Router /api/receipts/{token} [get]
func (h *ReceiptHandler) Download(c *gin.Context) {
	file, filename, err := h.service.Fetch(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, map[string]string{
		"Content-Disposition": `attachment; filename="` + filename + `"`,
	})
}
