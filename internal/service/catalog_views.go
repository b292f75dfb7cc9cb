package service

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/furukawa-sg/sg-reserve-api/internal/dto"
	"github.com/furukawa-sg/sg-reserve-api/internal/models"
)

// The old front end compared labels with localeCompare(..., "ja"); the
// collator reproduces that ordering. Collators are not concurrency-safe,
// hence the mutex.
var (
	jaMu       sync.Mutex
	jaCollator = collate.New(language.Japanese)
)

func jaCompare(a, b string) int {
	jaMu.Lock()
	defer jaMu.Unlock()
	return jaCollator.CompareString(a, b)
}

func normLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.FallbackLabel
	}
	return trimmed
}

// KindList returns the distinct kinds ordered by their hint, missing hints
// last, ties broken by Japanese collation. The first occurrence of a kind
// decides its hint.
func KindList(meta []models.CatalogEntry) []string {
	return orderedLabels(meta, func(m models.CatalogEntry) (string, int) {
		return normLabel(m.Kind), models.OrderHint(m.KindOrder)
	})
}

// CategoryList returns the distinct categories under the selected kind.
func CategoryList(meta []models.CatalogEntry, kind string) []string {
	scoped := make([]models.CatalogEntry, 0, len(meta))
	for _, m := range meta {
		if normLabel(m.Kind) == kind {
			scoped = append(scoped, m)
		}
	}
	return orderedLabels(scoped, func(m models.CatalogEntry) (string, int) {
		return normLabel(m.Category), models.OrderHint(m.CategoryOrder)
	})
}

func orderedLabels(meta []models.CatalogEntry, pick func(models.CatalogEntry) (string, int)) []string {
	type entry struct {
		label string
		order int
	}
	seen := map[string]struct{}{}
	entries := make([]entry, 0)
	for _, m := range meta {
		label, order := pick(m)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		entries = append(entries, entry{label: label, order: order})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].order != entries[j].order {
			return entries[i].order < entries[j].order
		}
		return jaCompare(entries[i].label, entries[j].label) < 0
	})

	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.label
	}
	return labels
}

// AreaOrgGroups returns the org options under kind+category, grouped by
// area. Orgs inside a group follow the org hint then collation; groups
// follow the area hint then collation. Orgs without an area are bucketed
// under the unset-area label.
func AreaOrgGroups(meta []models.CatalogEntry, kind, category string) []dto.AreaOrgGroup {
	type orgRow struct {
		area      string
		org       string
		areaOrder int
		orgOrder  int
	}

	seen := map[string]struct{}{}
	rows := make([]orgRow, 0)
	for _, m := range meta {
		if normLabel(m.Kind) != kind || normLabel(m.Category) != category {
			continue
		}
		area := strings.TrimSpace(m.Area)
		org := normLabel(m.OrgName)
		key := area + "||" + org
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, orgRow{
			area:      area,
			org:       org,
			areaOrder: models.OrderHint(m.AreaOrder),
			orgOrder:  models.OrderHint(m.OrgOrder),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.areaOrder != b.areaOrder {
			return a.areaOrder < b.areaOrder
		}
		if cmp := jaCompare(a.area, b.area); cmp != 0 {
			return cmp < 0
		}
		if a.orgOrder != b.orgOrder {
			return a.orgOrder < b.orgOrder
		}
		return jaCompare(a.org, b.org) < 0
	})

	groups := make([]dto.AreaOrgGroup, 0)
	index := map[string]int{}
	for _, r := range rows {
		label := r.area
		if label == "" {
			label = models.UnsetAreaLabel
		}
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, dto.AreaOrgGroup{Area: label})
		}
		groups[i].Orgs = append(groups[i].Orgs, dto.OrgOption{Area: r.area, Org: r.org})
	}
	return groups
}

// SubjectColumns returns the distinct subjects across the exam list. The
// smallest subject_order seen for a subject wins, then collation.
func SubjectColumns(exams []models.ExamItem) []string {
	orders := map[string]int{}
	for _, e := range exams {
		subject := normLabel(e.Subject)
		order := models.OrderHint(e.SubjectOrder)
		if existing, ok := orders[subject]; !ok || order < existing {
			orders[subject] = order
		}
	}

	subjects := make([]string, 0, len(orders))
	for s := range orders {
		subjects = append(subjects, s)
	}
	sort.SliceStable(subjects, func(i, j int) bool {
		if orders[subjects[i]] != orders[subjects[j]] {
			return orders[subjects[i]] < orders[subjects[j]]
		}
		return jaCompare(subjects[i], subjects[j]) < 0
	})
	return subjects
}

// YearRows returns the distinct numeric years, newest first. Non-numeric or
// zero years are dropped.
func YearRows(exams []models.ExamItem) []int {
	seen := map[int]struct{}{}
	years := make([]int, 0)
	for _, e := range exams {
		if y, ok := e.Year.Int(); ok {
			if _, dup := seen[y]; !dup {
				seen[y] = struct{}{}
				years = append(years, y)
			}
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Fixed sitting order: anything outside the three known terms sorts after
// them and falls back to collation.
var termPriority = map[string]int{"前期": 1, "中期": 2, "後期": 3}

const termPriorityOther = 999

// FacTermKey encodes a faculty×term pair as a filter key.
func FacTermKey(faculty, term string) string {
	return faculty + "||" + term
}

// ParseFacTermKey splits a filter key back into its parts.
func ParseFacTermKey(key string) (faculty, term string) {
	parts := strings.SplitN(key, "||", 2)
	faculty = parts[0]
	if len(parts) == 2 {
		term = parts[1]
	}
	return faculty, term
}

func facTermLabel(faculty, term string) string {
	if term == "" {
		return faculty
	}
	return faculty + "・" + term
}

// FacTermRows returns the distinct faculty×term pairs across the exam list,
// ordered by faculty collation, then sitting priority, then term collation.
func FacTermRows(exams []models.ExamItem) []dto.FacTermOption {
	type pair struct{ fac, term string }
	seen := map[pair]struct{}{}
	pairs := make([]pair, 0)
	for _, e := range exams {
		p := pair{fac: strings.TrimSpace(e.Faculty), term: strings.TrimSpace(e.Term)}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		pairs = append(pairs, p)
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if cmp := jaCompare(a.fac, b.fac); cmp != 0 {
			return cmp < 0
		}
		pa, ok := termPriority[a.term]
		if !ok {
			pa = termPriorityOther
		}
		pb, ok := termPriority[b.term]
		if !ok {
			pb = termPriorityOther
		}
		if pa != pb {
			return pa < pb
		}
		return jaCompare(a.term, b.term) < 0
	})

	options := make([]dto.FacTermOption, len(pairs))
	for i, p := range pairs {
		options[i] = dto.FacTermOption{Key: FacTermKey(p.fac, p.term), Label: facTermLabel(p.fac, p.term)}
	}
	return options
}

// HasFacTerm reports whether the key still maps to a row of the exam list.
func HasFacTerm(exams []models.ExamItem, key string) bool {
	if key == models.FacTermAll {
		return true
	}
	for _, opt := range FacTermRows(exams) {
		if opt.Key == key {
			return true
		}
	}
	return false
}

// BuildGrid derives the year × faculty×term × subject table. Ambiguous
// cells (several exams at one coordinate) resolve to the lexically smallest
// identifier and are reported in the diagnostics instead of being silently
// collapsed.
func BuildGrid(state *models.SelectionState) dto.GridView {
	exams := state.Exams
	subjects := SubjectColumns(exams)
	facTerms := FacTermRows(exams)

	visible := facTerms
	if state.FacTermKey != models.FacTermAll {
		visible = make([]dto.FacTermOption, 0, 1)
		for _, ft := range facTerms {
			if ft.Key == state.FacTermKey {
				visible = append(visible, ft)
			}
		}
	}

	view := dto.GridView{
		Subjects: subjects,
		FacTerms: facTerms,
		Filter:   state.FacTermKey,
	}

	for _, year := range YearRows(exams) {
		for _, ft := range visible {
			fac, term := ParseFacTermKey(ft.Key)

			rowExams := make([]models.ExamItem, 0)
			for _, e := range exams {
				y, ok := e.Year.Int()
				if !ok || y != year {
					continue
				}
				if strings.TrimSpace(e.Faculty) != fac || strings.TrimSpace(e.Term) != term {
					continue
				}
				rowExams = append(rowExams, e)
			}
			if len(rowExams) == 0 {
				continue
			}

			row := dto.GridRow{Year: year, Faculty: fac, Term: term, Label: ft.Label}
			for _, subject := range subjects {
				ids := make([]string, 0, 1)
				for _, e := range rowExams {
					if normLabel(e.Subject) == subject {
						ids = append(ids, e.Identifier())
					}
				}

				cell := dto.GridCell{Subject: subject}
				if len(ids) > 0 {
					sort.Strings(ids)
					cell.ExamID = ids[0]
					cell.Present = true
					cell.Checked = state.IsSelected(ids[0])
				}
				if len(ids) > 1 {
					view.DuplicateCells = append(view.DuplicateCells, dto.DuplicateCell{
						Year:    year,
						Faculty: fac,
						Term:    term,
						Subject: subject,
						ExamIDs: ids,
					})
				}
				row.Cells = append(row.Cells, cell)
			}
			view.Rows = append(view.Rows, row)
		}
	}

	return view
}
