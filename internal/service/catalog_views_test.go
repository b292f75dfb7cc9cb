package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furukawa-sg/sg-reserve-api/internal/models"
)

func intPtr(n int) *int { return &n }

func TestKindListOrderHints(t *testing.T) {
	meta := []models.CatalogEntry{
		{Kind: "私立", KindOrder: intPtr(2)},
		{Kind: "公立", KindOrder: intPtr(1)},
		{Kind: "国立"},
	}

	assert.Equal(t, []string{"公立", "私立", "国立"}, KindList(meta))
}

func TestKindListFirstOccurrenceWins(t *testing.T) {
	meta := []models.CatalogEntry{
		{Kind: "私立", KindOrder: intPtr(5)},
		{Kind: "公立", KindOrder: intPtr(1)},
		// A later row with a smaller hint must not reorder the kind.
		{Kind: "私立", KindOrder: intPtr(0)},
	}

	assert.Equal(t, []string{"公立", "私立"}, KindList(meta))
}

func TestKindListBlankLabelFallback(t *testing.T) {
	meta := []models.CatalogEntry{
		{Kind: "  ", KindOrder: intPtr(1)},
		{Kind: "公立", KindOrder: intPtr(2)},
	}

	assert.Equal(t, []string{models.FallbackLabel, "公立"}, KindList(meta))
}

func TestCategoryListScopedToKind(t *testing.T) {
	meta := []models.CatalogEntry{
		{Kind: "公立", Category: "高校", CategoryOrder: intPtr(2)},
		{Kind: "公立", Category: "中学", CategoryOrder: intPtr(1)},
		{Kind: "私立", Category: "大学", CategoryOrder: intPtr(0)},
	}

	assert.Equal(t, []string{"中学", "高校"}, CategoryList(meta, "公立"))
	assert.Equal(t, []string{"大学"}, CategoryList(meta, "私立"))
}

func TestAreaOrgGroupsGroupingAndFallback(t *testing.T) {
	meta := []models.CatalogEntry{
		{Kind: "公立", Category: "高校", Area: "関東", OrgName: "B高校", AreaOrder: intPtr(1), OrgOrder: intPtr(2)},
		{Kind: "公立", Category: "高校", Area: "関東", OrgName: "A高校", AreaOrder: intPtr(1), OrgOrder: intPtr(1)},
		{Kind: "公立", Category: "高校", Area: "", OrgName: "C高校"},
		{Kind: "私立", Category: "高校", Area: "関西", OrgName: "D高校"},
	}

	groups := AreaOrgGroups(meta, "公立", "高校")
	require.Len(t, groups, 2)

	assert.Equal(t, "関東", groups[0].Area)
	require.Len(t, groups[0].Orgs, 2)
	assert.Equal(t, "A高校", groups[0].Orgs[0].Org)
	assert.Equal(t, "B高校", groups[0].Orgs[1].Org)

	// The unset-area bucket keeps the raw empty area on its options.
	assert.Equal(t, models.UnsetAreaLabel, groups[1].Area)
	require.Len(t, groups[1].Orgs, 1)
	assert.Equal(t, "C高校", groups[1].Orgs[0].Org)
	assert.Equal(t, "", groups[1].Orgs[0].Area)
}

func TestAreaOrgGroupsDeduplicates(t *testing.T) {
	meta := []models.CatalogEntry{
		{Kind: "公立", Category: "高校", Area: "関東", OrgName: "A高校"},
		{Kind: "公立", Category: "高校", Area: "関東", OrgName: "A高校"},
	}

	groups := AreaOrgGroups(meta, "公立", "高校")
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Orgs, 1)
}

func TestSubjectColumnsMinOrderWins(t *testing.T) {
	exams := []models.ExamItem{
		{Subject: "数学", SubjectOrder: intPtr(5)},
		{Subject: "英語", SubjectOrder: intPtr(2)},
		{Subject: "数学", SubjectOrder: intPtr(1)},
		{Subject: "国語"},
	}

	assert.Equal(t, []string{"数学", "英語", "国語"}, SubjectColumns(exams))
}

func TestYearRowsNewestFirstDropsUnusable(t *testing.T) {
	exams := []models.ExamItem{
		{Year: models.NewFlexYear(2023)},
		{Year: models.NewFlexYear(2025)},
		{Year: models.NewFlexYear(2023)},
		{Year: models.NewFlexYear(0)},
		{},
	}

	assert.Equal(t, []int{2025, 2023}, YearRows(exams))
}

func TestFacTermRowsSittingOrder(t *testing.T) {
	exams := []models.ExamItem{
		{Faculty: "医学部", Term: "後期"},
		{Faculty: "医学部", Term: "前期"},
		{Faculty: "医学部", Term: "中期"},
		{Faculty: "医学部", Term: "追試"},
	}

	rows := FacTermRows(exams)
	require.Len(t, rows, 4)
	assert.Equal(t, "医学部・前期", rows[0].Label)
	assert.Equal(t, "医学部・中期", rows[1].Label)
	assert.Equal(t, "医学部・後期", rows[2].Label)
	assert.Equal(t, "医学部・追試", rows[3].Label)
}

func TestFacTermRowsEmptyTermLabel(t *testing.T) {
	rows := FacTermRows([]models.ExamItem{{Faculty: "工学部"}})
	require.Len(t, rows, 1)
	assert.Equal(t, "工学部", rows[0].Label)
	assert.Equal(t, FacTermKey("工学部", ""), rows[0].Key)
}

func TestBuildGridSkipsEmptyRowsAndMarksChecked(t *testing.T) {
	state := &models.SelectionState{
		Exams: []models.ExamItem{
			{ExamID: "e1", Year: models.NewFlexYear(2025), Faculty: "工学部", Term: "前期", Subject: "数学"},
			{ExamID: "e2", Year: models.NewFlexYear(2024), Faculty: "工学部", Term: "前期", Subject: "英語"},
		},
		Selected:   []string{"e1"},
		FacTermKey: models.FacTermAll,
	}

	grid := BuildGrid(state)
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, 2025, grid.Rows[0].Year)
	assert.Equal(t, 2024, grid.Rows[1].Year)

	cells := map[string]int{}
	for i, cell := range grid.Rows[0].Cells {
		cells[cell.Subject] = i
	}
	require.Contains(t, cells, "数学")
	require.Contains(t, cells, "英語")
	assert.True(t, grid.Rows[0].Cells[cells["数学"]].Present)
	assert.True(t, grid.Rows[0].Cells[cells["数学"]].Checked)
	assert.False(t, grid.Rows[0].Cells[cells["英語"]].Present)
}

func TestBuildGridFacTermFilter(t *testing.T) {
	state := &models.SelectionState{
		Exams: []models.ExamItem{
			{ExamID: "e1", Year: models.NewFlexYear(2025), Faculty: "工学部", Term: "前期", Subject: "数学"},
			{ExamID: "e2", Year: models.NewFlexYear(2025), Faculty: "医学部", Term: "前期", Subject: "数学"},
		},
		FacTermKey: FacTermKey("工学部", "前期"),
	}

	grid := BuildGrid(state)
	require.Len(t, grid.Rows, 1)
	assert.Equal(t, "工学部", grid.Rows[0].Faculty)
	// The full option list stays available for the filter UI.
	assert.Len(t, grid.FacTerms, 2)
}

func TestBuildGridDuplicateCellsDeterministic(t *testing.T) {
	state := &models.SelectionState{
		Exams: []models.ExamItem{
			{ExamID: "b-exam", Year: models.NewFlexYear(2025), Faculty: "工学部", Term: "前期", Subject: "数学"},
			{ExamID: "a-exam", Year: models.NewFlexYear(2025), Faculty: "工学部", Term: "前期", Subject: "数学"},
		},
		FacTermKey: models.FacTermAll,
	}

	grid := BuildGrid(state)
	require.Len(t, grid.Rows, 1)
	require.Len(t, grid.Rows[0].Cells, 1)
	assert.Equal(t, "a-exam", grid.Rows[0].Cells[0].ExamID)

	require.Len(t, grid.DuplicateCells, 1)
	assert.Equal(t, []string{"a-exam", "b-exam"}, grid.DuplicateCells[0].ExamIDs)
	assert.Equal(t, "数学", grid.DuplicateCells[0].Subject)
}

func TestHasFacTerm(t *testing.T) {
	exams := []models.ExamItem{{Faculty: "工学部", Term: "前期"}}

	assert.True(t, HasFacTerm(exams, models.FacTermAll))
	assert.True(t, HasFacTerm(exams, FacTermKey("工学部", "前期")))
	assert.False(t, HasFacTerm(exams, FacTermKey("医学部", "前期")))
}
