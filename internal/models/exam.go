package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexYear accepts the upstream's year field, which arrives either as a JSON
// number or as a numeric string.
type FlexYear struct {
	raw string
}

// UnmarshalJSON keeps whatever representation the upstream sent.
func (y *FlexYear) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		y.raw = strings.TrimSpace(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err == nil {
		y.raw = asNumber.String()
		return nil
	}
	y.raw = ""
	return nil
}

// MarshalJSON emits the year as a plain string.
func (y FlexYear) MarshalJSON() ([]byte, error) {
	return json.Marshal(y.raw)
}

// Int returns the numeric year and whether the raw value was usable.
// Zero years are treated as absent, matching the old grid builder.
func (y FlexYear) Int() (int, bool) {
	n, err := strconv.Atoi(y.raw)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// String returns the raw year text.
func (y FlexYear) String() string { return y.raw }

// NewFlexYear builds a year from an int, used by tests and fixtures.
func NewFlexYear(n int) FlexYear { return FlexYear{raw: strconv.Itoa(n)} }

// Truthy models the upstream's loose presence flags (answer, answer_sheet),
// where any non-empty, non-zero, non-false JSON value means "exists".
type Truthy bool

// UnmarshalJSON applies JavaScript-style truthiness.
func (t *Truthy) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "null", "false", "0", `""`:
		*t = false
	default:
		*t = true
	}
	return nil
}

// ExamItem represents one retrievable past-exam document.
type ExamItem struct {
	ExamID string   `json:"exam_id,omitempty"`
	ID     string   `json:"id,omitempty"`
	Title  string   `json:"title,omitempty"`
	Year   FlexYear `json:"year,omitempty"`

	Kind     string `json:"kind,omitempty"`
	Category string `json:"category,omitempty"`
	OrgName  string `json:"org_name,omitempty"`
	Area     string `json:"area,omitempty"`

	Faculty      string `json:"faculty,omitempty"`
	Term         string `json:"term,omitempty"`
	Subject      string `json:"subject,omitempty"`
	SubjectOrder *int   `json:"subject_order,omitempty"`

	Answer      Truthy `json:"answer,omitempty"`
	AnswerSheet Truthy `json:"answer_sheet,omitempty"`

	PrintDefaultStyle string `json:"print_default_style,omitempty"`
}

// Identifier returns exam_id with the legacy id fallback.
func (e ExamItem) Identifier() string {
	if e.ExamID != "" {
		return e.ExamID
	}
	return e.ID
}

// Label builds the human-readable row label used on the check screen.
func (e ExamItem) Label() string {
	year := e.Year.String()
	if year == "" {
		year = "-"
	}
	base := strings.TrimSpace(year + "年 " + strings.TrimSpace(e.Term+" "+e.Subject+" "+e.Faculty))
	if e.Title == "" {
		return base
	}
	return strings.TrimSpace(base + " " + e.Title)
}
