package models

import "time"

// FacTermAll is the "show all" grid filter key.
const FacTermAll = "ALL"

// Fetch states for the exam-list tier of a selection session.
const (
	FetchIdle    = "idle"
	FetchLoading = "loading"
	FetchReady   = "ready"
	FetchFailed  = "failed"
)

// SelectionState is one wizard session's cascading-filter state. Tiers are
// strictly ordered: kind, then category, then area+org, then the grid.
// Pointers model "not chosen yet"; Area may point at an empty string, which
// is a legal selection (org without an area).
type SelectionState struct {
	ID      string         `json:"id"`
	Catalog []CatalogEntry `json:"catalog"`

	Kind     *string `json:"kind,omitempty"`
	Category *string `json:"category,omitempty"`
	Area     *string `json:"area,omitempty"`
	Org      *string `json:"org,omitempty"`

	Exams      []ExamItem `json:"exams"`
	Selected   []string   `json:"selected"`
	FacTermKey string     `json:"fac_term_key"`

	// Generation guards against superseding exam fetches: a fetch result is
	// applied only while its generation matches the session's.
	Generation uint64 `json:"generation"`

	FetchStatus string `json:"fetch_status"`
	FetchError  string `json:"fetch_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSelected reports membership in the selection set.
func (s *SelectionState) IsSelected(examID string) bool {
	for _, id := range s.Selected {
		if id == examID {
			return true
		}
	}
	return false
}

// ResetBelowKind clears every tier that depends on the kind choice.
func (s *SelectionState) ResetBelowKind() {
	s.Category = nil
	s.ResetBelowCategory()
}

// ResetBelowCategory clears every tier that depends on the category choice.
func (s *SelectionState) ResetBelowCategory() {
	s.Area = nil
	s.Org = nil
	s.ResetGrid()
	s.FetchStatus = FetchIdle
	s.FetchError = ""
}

// ResetGrid empties the exam list, the selection set and the grid filter.
func (s *SelectionState) ResetGrid() {
	s.Exams = nil
	s.Selected = nil
	s.FacTermKey = FacTermAll
}
