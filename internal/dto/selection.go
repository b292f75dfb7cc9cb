package dto

// SelectKindRequest picks the first filter tier.
type SelectKindRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// SelectCategoryRequest picks the second filter tier.
type SelectCategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

// SelectOrgRequest picks the third tier. Area may be empty.
type SelectOrgRequest struct {
	Area string `json:"area"`
	Org  string `json:"org" binding:"required"`
}

// ToggleExamRequest flips one exam id in the selection set.
type ToggleExamRequest struct {
	ExamID string `json:"exam_id" binding:"required"`
}

// FacTermFilterRequest narrows the grid; empty or "ALL" shows every row.
type FacTermFilterRequest struct {
	Key string `json:"key"`
}

// AdvanceRequest carries the submitter info past the selection step.
type AdvanceRequest struct {
	Name  string `json:"name" binding:"required"`
	Grade string `json:"grade" binding:"required"`
}

// AdvanceResponse returns the hand-off token the check step presents.
type AdvanceResponse struct {
	HandoffToken  string `json:"handoff_token"`
	SelectedCount int    `json:"selected_count"`
}

// OrgOption is one selectable org button inside an area group.
type OrgOption struct {
	Area string `json:"area"`
	Org  string `json:"org"`
}

// AreaOrgGroup is one area heading with its ordered orgs.
type AreaOrgGroup struct {
	Area string      `json:"area"`
	Orgs []OrgOption `json:"orgs"`
}

// FacTermOption is one faculty×term narrowing choice.
type FacTermOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// GridCell resolves one (year, faculty×term, subject) coordinate.
type GridCell struct {
	Subject string `json:"subject"`
	ExamID  string `json:"exam_id,omitempty"`
	Present bool   `json:"present"`
	Checked bool   `json:"checked"`
}

// GridRow is one year × faculty×term row of the selection grid.
type GridRow struct {
	Year    int        `json:"year"`
	Faculty string     `json:"faculty"`
	Term    string     `json:"term"`
	Label   string     `json:"label"`
	Cells   []GridCell `json:"cells"`
}

// DuplicateCell flags an ambiguous grid coordinate for operators.
type DuplicateCell struct {
	Year    int      `json:"year"`
	Faculty string   `json:"faculty"`
	Term    string   `json:"term"`
	Subject string   `json:"subject"`
	ExamIDs []string `json:"exam_ids"`
}

// GridView is the derived year × faculty × subject table.
type GridView struct {
	Subjects       []string        `json:"subjects"`
	Rows           []GridRow       `json:"rows"`
	FacTerms       []FacTermOption `json:"fac_terms"`
	Filter         string          `json:"filter"`
	DuplicateCells []DuplicateCell `json:"duplicate_cells,omitempty"`
}

// SessionSnapshot is the full wizard state a client needs to render a step.
type SessionSnapshot struct {
	SessionID string `json:"session_id"`

	Kinds      []string       `json:"kinds"`
	Categories []string       `json:"categories"`
	OrgGroups  []AreaOrgGroup `json:"org_groups"`

	Kind     *string `json:"kind,omitempty"`
	Category *string `json:"category,omitempty"`
	Area     *string `json:"area,omitempty"`
	Org      *string `json:"org,omitempty"`

	FetchStatus string `json:"fetch_status"`
	FetchError  string `json:"fetch_error,omitempty"`

	Grid          *GridView `json:"grid,omitempty"`
	SelectedCount int       `json:"selected_count"`
	SelectedIDs   []string  `json:"selected_ids"`
}
