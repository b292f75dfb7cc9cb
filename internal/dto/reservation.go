package dto

import "github.com/furukawa-sg/sg-reserve-api/internal/models"

// CheckResponse is the confirmation-step view.
type CheckResponse struct {
	Student models.StudentInfo     `json:"student_info"`
	Rows    []models.CheckRowState `json:"rows"`
	Styles  []string               `json:"styles"`
}

// UpdateRowRequest patches one print-job row. Absent fields are untouched.
type UpdateRowRequest struct {
	MainCopies *int    `json:"main_copies,omitempty"`
	MainStyle  *string `json:"main_style,omitempty"`

	IncludeAnswer *bool   `json:"include_answer,omitempty"`
	AnswerCopies  *int    `json:"answer_copies,omitempty"`
	AnswerStyle   *string `json:"answer_style,omitempty"`

	IncludeSheet *bool   `json:"include_answer_sheet,omitempty"`
	SheetCopies  *int    `json:"answer_sheet_copies,omitempty"`
	SheetStyle   *string `json:"answer_sheet_style,omitempty"`
}

// SubmitRequest finalizes the reservation. Name and grade are re-editable on
// the check step, so they travel with the submission rather than the hand-off.
type SubmitRequest struct {
	Name  string `json:"name" binding:"required"`
	Grade string `json:"grade" binding:"required"`
}

// SubmitResponse reports the accepted reservation.
type SubmitResponse struct {
	JobCount      int    `json:"job_count"`
	Message       string `json:"message"`
	ReceiptURL    string `json:"receipt_url,omitempty"`
	BackTo        string `json:"back_to"`
	ReturnAfterMS int    `json:"return_after_ms"`
}

// DoneResponse drives the completion screen.
type DoneResponse struct {
	Message       string `json:"message"`
	BackTo        string `json:"back_to"`
	ReturnAfterMS int    `json:"return_after_ms"`
}
