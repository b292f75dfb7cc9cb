package models

import "time"

// PrintStyles is the fixed set of selectable print styles; the empty string
// means "unspecified".
var PrintStyles = []string{"", "B4冊子", "B4/2ページ刷り", "B5", "A4"}

// ValidPrintStyle reports whether the style is one of the fixed options.
func ValidPrintStyle(style string) bool {
	for _, s := range PrintStyles {
		if s == style {
			return true
		}
	}
	return false
}

// StudentInfo is the transient submitter identity carried from the selection
// step into the submission payload. Never persisted past the hand-off TTL.
type StudentInfo struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

// HandoffState is written when the user advances past the selection step and
// read back by the check step. Fails closed when absent or unparseable.
// Rows is populated lazily on the first check-step load and carries the
// per-exam print configuration across edits.
type HandoffState struct {
	SelectedExamIDs []string        `json:"selected_exam_ids"`
	Student         StudentInfo     `json:"student_info"`
	Rows            []CheckRowState `json:"rows,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CheckRowState is one check-step row: the fetched exam's display facts plus
// its editable print configuration.
type CheckRowState struct {
	ExamID    string      `json:"exam_id"`
	Label     string      `json:"label"`
	HasAnswer bool        `json:"has_answer"`
	HasSheet  bool        `json:"has_answer_sheet"`
	Row       PrintJobRow `json:"row"`
}

// NewCheckRowState initializes the row for a fetched exam: one copy of the
// main document in its default style, answer and answer sheet included
// whenever the exam has them.
func NewCheckRowState(exam ExamItem) CheckRowState {
	hasAnswer := bool(exam.Answer)
	hasSheet := bool(exam.AnswerSheet)

	row := PrintJobRow{
		ExamID:        exam.Identifier(),
		MainCopies:    1,
		MainStyle:     exam.PrintDefaultStyle,
		IncludeAnswer: hasAnswer,
		IncludeSheet:  hasSheet,
	}
	if hasAnswer {
		row.AnswerCopies = 1
		row.AnswerStyle = exam.PrintDefaultStyle
	}
	if hasSheet {
		row.SheetCopies = 1
		row.SheetStyle = exam.PrintDefaultStyle
	}
	if !ValidPrintStyle(row.MainStyle) {
		row.MainStyle = ""
		row.AnswerStyle = ""
		row.SheetStyle = ""
	}

	return CheckRowState{
		ExamID:    exam.Identifier(),
		Label:     exam.Label(),
		HasAnswer: hasAnswer,
		HasSheet:  hasSheet,
		Row:       row,
	}
}

// PrintJobRow is the per-exam print configuration edited on the check step.
// Raw copies/style values may go stale after an include flag is switched off;
// the submission projection zeroes them (see Job).
type PrintJobRow struct {
	ExamID string `json:"exam_id"`

	MainCopies int    `json:"main_copies"`
	MainStyle  string `json:"main_style"`

	IncludeAnswer bool   `json:"include_answer"`
	AnswerCopies  int    `json:"answer_copies"`
	AnswerStyle   string `json:"answer_style"`

	IncludeSheet bool   `json:"include_answer_sheet"`
	SheetCopies  int    `json:"answer_sheet_copies"`
	SheetStyle   string `json:"answer_sheet_style"`
}

// Job projects the row into the wire shape the upstream expects. Excluded
// sections always report zero copies and an empty style, regardless of the
// stored values.
func (r PrintJobRow) Job() PrintJob {
	job := PrintJob{
		ExamID:        r.ExamID,
		Copies:        r.MainCopies,
		Style:         r.MainStyle,
		IncludeAnswer: r.IncludeAnswer,
		IncludeSheet:  r.IncludeSheet,
	}
	if r.IncludeAnswer {
		job.AnswerCopies = r.AnswerCopies
		job.AnswerStyle = r.AnswerStyle
	}
	if r.IncludeSheet {
		job.SheetCopies = r.SheetCopies
		job.SheetStyle = r.SheetStyle
	}
	return job
}

// PrintJob is one submitted job, wire-compatible with the legacy check page.
type PrintJob struct {
	ExamID string `json:"exam_id"`
	Copies int    `json:"copies"`
	Style  string `json:"style"`

	IncludeAnswer bool   `json:"include_answer"`
	AnswerCopies  int    `json:"answer_copies"`
	AnswerStyle   string `json:"answer_style"`

	IncludeSheet bool   `json:"include_answer_sheet"`
	SheetCopies  int    `json:"answer_sheet_copies"`
	SheetStyle   string `json:"answer_sheet_style"`
}

// PrintJobSubmission is the top-level payload posted to the upstream.
type PrintJobSubmission struct {
	StudentName  string     `json:"student_name"`
	StudentGrade string     `json:"student_grade"`
	Jobs         []PrintJob `json:"jobs"`
}
