package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexYearAcceptsStringAndNumber(t *testing.T) {
	var item ExamItem
	require.NoError(t, json.Unmarshal([]byte(`{"year":"2025"}`), &item))
	y, ok := item.Year.Int()
	assert.True(t, ok)
	assert.Equal(t, 2025, y)

	require.NoError(t, json.Unmarshal([]byte(`{"year":2024}`), &item))
	y, ok = item.Year.Int()
	assert.True(t, ok)
	assert.Equal(t, 2024, y)

	require.NoError(t, json.Unmarshal([]byte(`{"year":0}`), &item))
	_, ok = item.Year.Int()
	assert.False(t, ok)

	require.NoError(t, json.Unmarshal([]byte(`{"year":"unknown"}`), &item))
	_, ok = item.Year.Int()
	assert.False(t, ok)
}

func TestTruthyFollowsLooseSemantics(t *testing.T) {
	cases := map[string]bool{
		`{"answer":true}`:     true,
		`{"answer":"yes"}`:    true,
		`{"answer":1}`:        true,
		`{"answer":{}}`:       true,
		`{"answer":false}`:    false,
		`{"answer":0}`:        false,
		`{"answer":""}`:       false,
		`{"answer":null}`:     false,
	}
	for raw, want := range cases {
		var item ExamItem
		require.NoError(t, json.Unmarshal([]byte(raw), &item), raw)
		assert.Equal(t, want, bool(item.Answer), raw)
	}
}

func TestExamIdentifierFallback(t *testing.T) {
	assert.Equal(t, "a", ExamItem{ExamID: "a", ID: "b"}.Identifier())
	assert.Equal(t, "b", ExamItem{ID: "b"}.Identifier())
}

func TestPrintJobProjectionZeroesExcludedSections(t *testing.T) {
	row := PrintJobRow{
		ExamID:        "e1",
		MainCopies:    2,
		MainStyle:     "B5",
		IncludeAnswer: false,
		AnswerCopies:  5,
		AnswerStyle:   "B4冊子",
		IncludeSheet:  true,
		SheetCopies:   3,
		SheetStyle:    "A4",
	}

	job := row.Job()
	assert.Equal(t, 2, job.Copies)
	assert.Equal(t, 0, job.AnswerCopies)
	assert.Equal(t, "", job.AnswerStyle)
	assert.Equal(t, 3, job.SheetCopies)
	assert.Equal(t, "A4", job.SheetStyle)
}

func TestNewCheckRowStateDefaults(t *testing.T) {
	exam := ExamItem{
		ExamID:            "e1",
		Year:              NewFlexYear(2025),
		Subject:           "数学",
		Answer:            Truthy(true),
		PrintDefaultStyle: "B5",
	}

	row := NewCheckRowState(exam)
	assert.Equal(t, 1, row.Row.MainCopies)
	assert.Equal(t, "B5", row.Row.MainStyle)
	assert.True(t, row.Row.IncludeAnswer)
	assert.Equal(t, 1, row.Row.AnswerCopies)
	assert.False(t, row.Row.IncludeSheet)
	assert.Equal(t, 0, row.Row.SheetCopies)

	// Unknown default styles fall back to unspecified.
	exam.PrintDefaultStyle = "謎のスタイル"
	row = NewCheckRowState(exam)
	assert.Equal(t, "", row.Row.MainStyle)
	assert.Equal(t, "", row.Row.AnswerStyle)
}
