package repository

import (
	"context"
	"errors"
	"time"

	"github.com/furukawa-sg/sg-reserve-api/internal/models"
)

// Key layout for session-scoped state. Mirrors the browser-storage keys the
// old front end used (sg_last_student_name/grade, selected_exam_ids,
// student_info, view-mode) as explicit, documented server-side keys.
const (
	keyWizard      = "wizard:"
	keyHandoff     = "handoff:"
	keyLastStudent = "student:last:"
	keyViewPref    = "pref:view:"
)

// SessionRepository is the storage port for all transient reservation state.
// Nothing here outlives its TTL; business data stays upstream.
type SessionRepository struct {
	kv         KV
	wizardTTL  time.Duration
	handoffTTL time.Duration
	observe    func(time.Duration)
}

// NewSessionRepository wires the port onto a KV backend.
func NewSessionRepository(kv KV, wizardTTL, handoffTTL time.Duration) *SessionRepository {
	if wizardTTL <= 0 {
		wizardTTL = 2 * time.Hour
	}
	if handoffTTL <= 0 {
		handoffTTL = 30 * time.Minute
	}
	return &SessionRepository{kv: kv, wizardTTL: wizardTTL, handoffTTL: handoffTTL}
}

// WithObserver registers a latency callback for store operations.
func (r *SessionRepository) WithObserver(fn func(time.Duration)) *SessionRepository {
	r.observe = fn
	return r
}

func (r *SessionRepository) observeSince(start time.Time) {
	if r.observe != nil {
		r.observe(time.Since(start))
	}
}

// SaveWizard persists a selection session, refreshing its TTL.
func (r *SessionRepository) SaveWizard(ctx context.Context, state *models.SelectionState) error {
	defer r.observeSince(time.Now())
	return r.kv.Set(ctx, keyWizard+state.ID, state, r.wizardTTL)
}

// LoadWizard restores a selection session.
func (r *SessionRepository) LoadWizard(ctx context.Context, id string) (*models.SelectionState, error) {
	defer r.observeSince(time.Now())
	state := &models.SelectionState{}
	if err := r.kv.Get(ctx, keyWizard+id, state); err != nil {
		return nil, err
	}
	return state, nil
}

// DeleteWizard drops a selection session.
func (r *SessionRepository) DeleteWizard(ctx context.Context, id string) error {
	return r.kv.Delete(ctx, keyWizard+id)
}

// SaveHandoff writes the check-step hand-off record.
func (r *SessionRepository) SaveHandoff(ctx context.Context, token string, state models.HandoffState) error {
	defer r.observeSince(time.Now())
	return r.kv.Set(ctx, keyHandoff+token, state, r.handoffTTL)
}

// LoadHandoff restores the hand-off record; ErrMiss means expired or absent.
func (r *SessionRepository) LoadHandoff(ctx context.Context, token string) (*models.HandoffState, error) {
	defer r.observeSince(time.Now())
	state := &models.HandoffState{}
	if err := r.kv.Get(ctx, keyHandoff+token, state); err != nil {
		return nil, err
	}
	return state, nil
}

// DeleteHandoff clears the hand-off record after a successful submission.
func (r *SessionRepository) DeleteHandoff(ctx context.Context, token string) error {
	return r.kv.Delete(ctx, keyHandoff+token)
}

// SaveLastStudent remembers the last-used name/grade for pre-filling.
func (r *SessionRepository) SaveLastStudent(ctx context.Context, subject string, info models.StudentInfo) error {
	return r.kv.Set(ctx, keyLastStudent+subject, info, 0)
}

// LoadLastStudent restores the remembered name/grade, empty when unknown.
func (r *SessionRepository) LoadLastStudent(ctx context.Context, subject string) (models.StudentInfo, error) {
	var info models.StudentInfo
	if err := r.kv.Get(ctx, keyLastStudent+subject, &info); err != nil {
		if errors.Is(err, ErrMiss) {
			return models.StudentInfo{}, nil
		}
		return models.StudentInfo{}, err
	}
	return info, nil
}

// SaveViewPref stores the grid view-mode preference.
func (r *SessionRepository) SaveViewPref(ctx context.Context, subject, mode string) error {
	return r.kv.Set(ctx, keyViewPref+subject, mode, 0)
}

// LoadViewPref restores the view-mode preference, empty when unset.
func (r *SessionRepository) LoadViewPref(ctx context.Context, subject string) (string, error) {
	var mode string
	if err := r.kv.Get(ctx, keyViewPref+subject, &mode); err != nil {
		if errors.Is(err, ErrMiss) {
			return "", nil
		}
		return "", err
	}
	return mode, nil
}

// ClearSubject removes everything remembered for a subject on logout.
func (r *SessionRepository) ClearSubject(ctx context.Context, subject string) error {
	return r.kv.Delete(ctx, keyLastStudent+subject, keyViewPref+subject)
}
