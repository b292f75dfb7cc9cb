package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Receipt is the data rendered into the reservation receipt PDF.
type Receipt struct {
	ReceiptID    string
	StudentName  string
	StudentGrade string
	SubmittedAt  string
	Jobs         []ReceiptJob
}

// ReceiptJob is one accepted print job line.
type ReceiptJob struct {
	ExamLabel string
	Copies    int
	Style     string
	Extras    string
}

// ReceiptRenderer renders reservation receipts into a tabular PDF.
type ReceiptRenderer struct{}

// NewReceiptRenderer constructs a receipt renderer.
func NewReceiptRenderer() *ReceiptRenderer {
	return &ReceiptRenderer{}
}

// Render creates the receipt document.
func (r *ReceiptRenderer) Render(receipt Receipt) ([]byte, error) {
	if receipt.ReceiptID == "" {
		return nil, fmt.Errorf("receipt id required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "RESERVATION RECEIPT", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Receipt: %s", receipt.ReceiptID), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Student: %s (%s)", receipt.StudentName, receipt.StudentGrade), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Submitted: %s", receipt.SubmittedAt), "", 1, "", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Exam", "Copies", "Style", "Extras"}
	widths := []float64{90, 20, 40, 40}
	pdf.SetFont("Arial", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, job := range receipt.Jobs {
		pdf.CellFormat(widths[0], 7, job.ExamLabel, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", job.Copies), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, job.Style, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[3], 7, job.Extras, "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
