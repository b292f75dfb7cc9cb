package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/furukawa-sg/sg-reserve-api/internal/dto"
	"github.com/furukawa-sg/sg-reserve-api/internal/models"
	"github.com/furukawa-sg/sg-reserve-api/internal/repository"
	"github.com/furukawa-sg/sg-reserve-api/internal/upstream"
	appErrors "github.com/furukawa-sg/sg-reserve-api/pkg/errors"
)

type catalogSource interface {
	Catalog(ctx context.Context, auth string) ([]models.CatalogEntry, error)
	Exams(ctx context.Context, auth string, scope upstream.ExamScope) ([]models.ExamItem, error)
}

type selectionStore interface {
	SaveWizard(ctx context.Context, state *models.SelectionState) error
	LoadWizard(ctx context.Context, id string) (*models.SelectionState, error)
	DeleteWizard(ctx context.Context, id string) error
	SaveHandoff(ctx context.Context, token string, state models.HandoffState) error
	SaveLastStudent(ctx context.Context, subject string, info models.StudentInfo) error
}

// SelectionService drives the four-tier cascading filter over the exam
// catalog and owns the selection set. Tiers are strictly ordered; choosing
// any tier deterministically clears everything below it.
type SelectionService struct {
	source  catalogSource
	store   selectionStore
	metrics *MetricsService
	logger  *zap.Logger

	// Transitions for one session are serialized in-process; the generation
	// counter additionally protects against a superseded exam fetch landing
	// after a newer org was picked.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewSelectionService constructs the wizard service. metrics may be nil.
func NewSelectionService(source catalogSource, store selectionStore, metrics *MetricsService, logger *zap.Logger) *SelectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionService{
		source:  source,
		store:   store,
		metrics: metrics,
		logger:  logger,
		locks:   map[string]*sync.Mutex{},
	}
}

func (s *SelectionService) lock(id string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	return mu
}

// Start fetches the catalog and opens a fresh session with nothing selected.
func (s *SelectionService) Start(ctx context.Context, auth string) (*dto.SessionSnapshot, error) {
	catalog, err := s.source.Catalog(ctx, auth)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	state := &models.SelectionState{
		ID:          uuid.NewString(),
		Catalog:     catalog,
		FacTermKey:  models.FacTermAll,
		FetchStatus: models.FetchIdle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.SaveWizard(ctx, state); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist selection session")
	}

	s.logger.Info("selection_session_started", zap.String("session_id", state.ID), zap.Int("catalog_size", len(catalog)))
	return s.snapshot(state), nil
}

// Snapshot returns the current derived view of a session.
func (s *SelectionService) Snapshot(ctx context.Context, id string) (*dto.SessionSnapshot, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(state), nil
}

// SelectKind chooses the first tier, clearing every dependent tier.
func (s *SelectionService) SelectKind(ctx context.Context, id, kind string) (*dto.SessionSnapshot, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !contains(KindList(state.Catalog), kind) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown kind")
	}

	state.Kind = &kind
	state.ResetBelowKind()
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return s.snapshot(state), nil
}

// SelectCategory chooses the second tier. A kind must already be chosen.
func (s *SelectionService) SelectCategory(ctx context.Context, id, category string) (*dto.SessionSnapshot, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if state.Kind == nil {
		return nil, appErrors.Clone(appErrors.ErrStateOrder, "choose a kind first")
	}
	if !contains(CategoryList(state.Catalog, *state.Kind), category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown category")
	}

	state.Category = &category
	state.ResetBelowCategory()
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return s.snapshot(state), nil
}

// SelectOrg chooses the third tier (area may be empty) and fetches the exam
// list for the new scope. Only the response matching the session's current
// generation is applied; superseded responses are discarded.
func (s *SelectionService) SelectOrg(ctx context.Context, id, auth string, req dto.SelectOrgRequest) (*dto.SessionSnapshot, error) {
	mu := s.lock(id)
	mu.Lock()

	state, err := s.load(ctx, id)
	if err != nil {
		mu.Unlock()
		return nil, err
	}

	if state.Kind == nil || state.Category == nil {
		mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrStateOrder, "choose kind and category first")
	}

	area := strings.TrimSpace(req.Area)
	org := strings.TrimSpace(req.Org)
	if !orgExists(state.Catalog, *state.Kind, *state.Category, area, org) {
		mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown school or organization")
	}

	state.Area = &area
	state.Org = &org
	state.ResetGrid()
	state.Generation++
	generation := state.Generation
	state.FetchStatus = models.FetchLoading
	state.FetchError = ""
	if err := s.save(ctx, state); err != nil {
		mu.Unlock()
		return nil, err
	}

	scope := upstream.ExamScope{
		Kind:     *state.Kind,
		Category: *state.Category,
		Org:      org,
		Area:     area,
	}

	// The fetch runs outside the session lock so a newer SelectOrg is never
	// blocked behind a slow upstream.
	mu.Unlock()
	exams, fetchErr := s.source.Exams(ctx, auth, scope)

	return s.applyExams(ctx, id, generation, exams, fetchErr)
}

// applyExams installs a fetched exam list iff the generation still matches.
func (s *SelectionService) applyExams(ctx context.Context, id string, generation uint64, exams []models.ExamItem, fetchErr error) (*dto.SessionSnapshot, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if state.Generation != generation {
		s.metrics.RecordStaleDiscard()
		s.logger.Info("stale_exam_fetch_discarded",
			zap.String("session_id", id),
			zap.Uint64("response_generation", generation),
			zap.Uint64("current_generation", state.Generation),
		)
		return nil, appErrors.ErrStaleGeneration
	}

	if fetchErr != nil {
		state.FetchStatus = models.FetchFailed
		state.FetchError = fetchErr.Error()
		state.Exams = nil
		state.Selected = nil
	} else {
		state.Exams = exams
		state.Selected = nil
		state.FacTermKey = models.FacTermAll
		state.FetchStatus = models.FetchReady
		state.FetchError = ""
	}

	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	if fetchErr != nil {
		return s.snapshot(state), fetchErr
	}
	return s.snapshot(state), nil
}

// ToggleExam adds the id to the selection set, or removes it when present.
func (s *SelectionService) ToggleExam(ctx context.Context, id, examID string) (*dto.SessionSnapshot, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if state.FetchStatus != models.FetchReady {
		return nil, appErrors.Clone(appErrors.ErrStateOrder, "choose a school or organization first")
	}

	known := false
	for _, e := range state.Exams {
		if e.Identifier() == examID {
			known = true
			break
		}
	}
	if !known {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam is not in the current list")
	}

	if state.IsSelected(examID) {
		kept := state.Selected[:0]
		for _, sel := range state.Selected {
			if sel != examID {
				kept = append(kept, sel)
			}
		}
		state.Selected = kept
	} else {
		state.Selected = append(state.Selected, examID)
	}

	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return s.snapshot(state), nil
}

// SetFacTermFilter narrows the grid; an empty key means show all. The key
// must name an existing faculty×term row.
func (s *SelectionService) SetFacTermFilter(ctx context.Context, id, key string) (*dto.SessionSnapshot, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if key == "" {
		key = models.FacTermAll
	}
	if !HasFacTerm(state.Exams, key) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown faculty/term filter")
	}

	state.FacTermKey = key
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return s.snapshot(state), nil
}

// Advance hands the selection off to the check step. The submitter's name
// and grade are required and remembered for the next visit.
func (s *SelectionService) Advance(ctx context.Context, id, subject string, req dto.AdvanceRequest) (*dto.AdvanceResponse, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(state.Selected) == 0 {
		return nil, appErrors.ErrEmptySelection
	}

	name := strings.TrimSpace(req.Name)
	grade := strings.TrimSpace(req.Grade)
	if name == "" || grade == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name and grade are required")
	}

	info := models.StudentInfo{Name: name, Grade: grade}
	token := uuid.NewString()
	handoff := models.HandoffState{
		SelectedExamIDs: append([]string(nil), state.Selected...),
		Student:         info,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.SaveHandoff(ctx, token, handoff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist hand-off state")
	}
	if subject != "" {
		if err := s.store.SaveLastStudent(ctx, subject, info); err != nil {
			s.logger.Warn("save_last_student_failed", zap.Error(err))
		}
	}

	return &dto.AdvanceResponse{HandoffToken: token, SelectedCount: len(handoff.SelectedExamIDs)}, nil
}

// Discard drops a wizard session.
func (s *SelectionService) Discard(ctx context.Context, id string) error {
	if err := s.store.DeleteWizard(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "discard selection session")
	}
	s.locksMu.Lock()
	delete(s.locks, id)
	s.locksMu.Unlock()
	return nil
}

func (s *SelectionService) load(ctx context.Context, id string) (*models.SelectionState, error) {
	state, err := s.store.LoadWizard(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMiss) {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load selection session")
	}

	// The filter may reference a row that vanished with a newer exam list.
	if state.FacTermKey != models.FacTermAll && !HasFacTerm(state.Exams, state.FacTermKey) {
		state.FacTermKey = models.FacTermAll
	}
	return state, nil
}

func (s *SelectionService) save(ctx context.Context, state *models.SelectionState) error {
	state.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveWizard(ctx, state); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist selection session")
	}
	return nil
}

func (s *SelectionService) snapshot(state *models.SelectionState) *dto.SessionSnapshot {
	snap := &dto.SessionSnapshot{
		SessionID:   state.ID,
		Kinds:       KindList(state.Catalog),
		Categories:  []string{},
		OrgGroups:   []dto.AreaOrgGroup{},
		Kind:        state.Kind,
		Category:    state.Category,
		Area:        state.Area,
		Org:         state.Org,
		FetchStatus: state.FetchStatus,
		FetchError:  state.FetchError,
		SelectedIDs: append([]string{}, state.Selected...),
	}
	snap.SelectedCount = len(snap.SelectedIDs)

	if state.Kind != nil {
		snap.Categories = CategoryList(state.Catalog, *state.Kind)
	}
	if state.Kind != nil && state.Category != nil {
		snap.OrgGroups = AreaOrgGroups(state.Catalog, *state.Kind, *state.Category)
	}
	if state.FetchStatus == models.FetchReady {
		grid := BuildGrid(state)
		snap.Grid = &grid
	}
	return snap
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func orgExists(meta []models.CatalogEntry, kind, category, area, org string) bool {
	for _, group := range AreaOrgGroups(meta, kind, category) {
		for _, opt := range group.Orgs {
			if opt.Org == org && opt.Area == area {
				return true
			}
		}
	}
	return false
}
