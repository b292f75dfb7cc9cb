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
	appErrors "github.com/furukawa-sg/sg-reserve-api/pkg/errors"
	"github.com/furukawa-sg/sg-reserve-api/pkg/export"
)

const (
	doneMessage   = "予約が完了しました。予約システムに戻ります。"
	doneBackTo    = "/student/reservation"
	doneReturnMS  = 1500
	submitMessage = "予約を受け付けました。"
)

type printJobGateway interface {
	ExamsByID(ctx context.Context, auth string, ids []string) ([]models.ExamItem, error)
	SubmitPrintJobs(ctx context.Context, auth string, submission models.PrintJobSubmission) error
}

type handoffStore interface {
	LoadHandoff(ctx context.Context, token string) (*models.HandoffState, error)
	SaveHandoff(ctx context.Context, token string, state models.HandoffState) error
	DeleteHandoff(ctx context.Context, token string) error
	SaveLastStudent(ctx context.Context, subject string, info models.StudentInfo) error
	LoadLastStudent(ctx context.Context, subject string) (models.StudentInfo, error)
}

type receiptIssuer interface {
	Issue(receipt export.Receipt) (string, error)
}

// ReservationService owns the check step and the final submission. The
// hand-off record is the single source of truth between selection and
// submission; it is removed only after the upstream accepts the jobs.
type ReservationService struct {
	gateway  printJobGateway
	store    handoffStore
	receipts receiptIssuer
	logger   *zap.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewReservationService constructs the check/submit service. receipts may be
// nil when receipt generation is disabled.
func NewReservationService(gateway printJobGateway, store handoffStore, receipts receiptIssuer, logger *zap.Logger) *ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{
		gateway:  gateway,
		store:    store,
		receipts: receipts,
		logger:   logger,
		locks:    map[string]*sync.Mutex{},
	}
}

func (s *ReservationService) lock(token string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[token]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[token] = mu
	}
	return mu
}

// LoadCheck materializes the check-step view. On first load the carried exam
// ids are resolved to full details and each row gets its print defaults; the
// rows then live with the hand-off until submission.
func (s *ReservationService) LoadCheck(ctx context.Context, auth, subject, token string) (*dto.CheckResponse, error) {
	mu := s.lock(token)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	if state.Rows == nil {
		exams, err := s.gateway.ExamsByID(ctx, auth, state.SelectedExamIDs)
		if err != nil {
			return nil, err
		}

		byID := make(map[string]models.ExamItem, len(exams))
		for _, e := range exams {
			byID[e.Identifier()] = e
		}

		rows := make([]models.CheckRowState, 0, len(state.SelectedExamIDs))
		for _, id := range state.SelectedExamIDs {
			exam, ok := byID[id]
			if !ok {
				s.logger.Warn("carried_exam_missing_upstream", zap.String("exam_id", id))
				continue
			}
			rows = append(rows, models.NewCheckRowState(exam))
		}
		state.Rows = rows

		if err := s.save(ctx, token, state); err != nil {
			return nil, err
		}
	}

	student := state.Student
	if student.Name == "" && subject != "" {
		if last, err := s.store.LoadLastStudent(ctx, subject); err == nil {
			student = last
		}
	}

	return &dto.CheckResponse{
		Student: student,
		Rows:    state.Rows,
		Styles:  models.PrintStyles,
	}, nil
}

// UpdateRow patches one row's print configuration. Copies are clamped to at
// least one while the section is included; styles must be known options;
// answer sections can only be included when the exam actually has them.
func (s *ReservationService) UpdateRow(ctx context.Context, token, examID string, req dto.UpdateRowRequest) (*models.CheckRowState, error) {
	mu := s.lock(token)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if state.Rows == nil {
		return nil, appErrors.Clone(appErrors.ErrStateOrder, "load the check step before editing rows")
	}

	idx := -1
	for i := range state.Rows {
		if state.Rows[i].ExamID == examID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exam is not part of this reservation")
	}

	row := &state.Rows[idx]
	for _, style := range []*string{req.MainStyle, req.AnswerStyle, req.SheetStyle} {
		if style != nil && !models.ValidPrintStyle(*style) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown print style")
		}
	}
	if req.IncludeAnswer != nil && *req.IncludeAnswer && !row.HasAnswer {
		return nil, appErrors.Clone(appErrors.ErrValidation, "this exam has no answer document")
	}
	if req.IncludeSheet != nil && *req.IncludeSheet && !row.HasSheet {
		return nil, appErrors.Clone(appErrors.ErrValidation, "this exam has no answer sheet")
	}

	if req.MainCopies != nil {
		row.Row.MainCopies = *req.MainCopies
	}
	if req.MainStyle != nil {
		row.Row.MainStyle = *req.MainStyle
	}
	if req.IncludeAnswer != nil {
		row.Row.IncludeAnswer = *req.IncludeAnswer
	}
	if req.AnswerCopies != nil {
		row.Row.AnswerCopies = *req.AnswerCopies
	}
	if req.AnswerStyle != nil {
		row.Row.AnswerStyle = *req.AnswerStyle
	}
	if req.IncludeSheet != nil {
		row.Row.IncludeSheet = *req.IncludeSheet
	}
	if req.SheetCopies != nil {
		row.Row.SheetCopies = *req.SheetCopies
	}
	if req.SheetStyle != nil {
		row.Row.SheetStyle = *req.SheetStyle
	}

	if row.Row.MainCopies < 1 {
		row.Row.MainCopies = 1
	}
	if row.Row.IncludeAnswer && row.Row.AnswerCopies < 1 {
		row.Row.AnswerCopies = 1
	}
	if row.Row.IncludeSheet && row.Row.SheetCopies < 1 {
		row.Row.SheetCopies = 1
	}

	if err := s.save(ctx, token, state); err != nil {
		return nil, err
	}
	updated := state.Rows[idx]
	return &updated, nil
}

// Submit posts the reservation upstream. The hand-off is kept on failure so
// the user can retry, and removed only after the upstream accepts the jobs.
func (s *ReservationService) Submit(ctx context.Context, auth, subject, token string, req dto.SubmitRequest) (*dto.SubmitResponse, error) {
	mu := s.lock(token)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if state.Rows == nil {
		return nil, appErrors.Clone(appErrors.ErrStateOrder, "load the check step before submitting")
	}

	name := strings.TrimSpace(req.Name)
	grade := strings.TrimSpace(req.Grade)
	if name == "" || grade == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name and grade are required")
	}

	jobs := make([]models.PrintJob, 0, len(state.Rows))
	for _, row := range state.Rows {
		jobs = append(jobs, row.Row.Job())
	}
	if len(jobs) == 0 {
		return nil, appErrors.ErrEmptySelection
	}

	submission := models.PrintJobSubmission{
		StudentName:  name,
		StudentGrade: grade,
		Jobs:         jobs,
	}
	if err := s.gateway.SubmitPrintJobs(ctx, auth, submission); err != nil {
		s.logger.Warn("print_job_submission_rejected", zap.Int("jobs", len(jobs)), zap.Error(err))
		return nil, err
	}

	if subject != "" {
		if err := s.store.SaveLastStudent(ctx, subject, models.StudentInfo{Name: name, Grade: grade}); err != nil {
			s.logger.Warn("save_last_student_failed", zap.Error(err))
		}
	}
	if err := s.store.DeleteHandoff(ctx, token); err != nil {
		s.logger.Warn("handoff_cleanup_failed", zap.Error(err))
	}
	s.locksMu.Lock()
	delete(s.locks, token)
	s.locksMu.Unlock()

	resp := &dto.SubmitResponse{
		JobCount:      len(jobs),
		Message:       submitMessage,
		BackTo:        doneBackTo,
		ReturnAfterMS: doneReturnMS,
	}

	if s.receipts != nil {
		receipt := buildReceipt(name, grade, state.Rows)
		url, err := s.receipts.Issue(receipt)
		if err != nil {
			// The reservation already succeeded; a missing receipt must not
			// fail the request.
			s.logger.Warn("receipt_issue_failed", zap.Error(err))
		} else {
			resp.ReceiptURL = url
		}
	}

	s.logger.Info("reservation_submitted", zap.Int("jobs", len(jobs)))
	return resp, nil
}

// Done returns the completion-screen metadata.
func (s *ReservationService) Done() dto.DoneResponse {
	return dto.DoneResponse{
		Message:       doneMessage,
		BackTo:        doneBackTo,
		ReturnAfterMS: doneReturnMS,
	}
}

func (s *ReservationService) load(ctx context.Context, token string) (*models.HandoffState, error) {
	state, err := s.store.LoadHandoff(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrMiss) {
			return nil, appErrors.ErrHandoffExpired
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load hand-off state")
	}
	return state, nil
}

func (s *ReservationService) save(ctx context.Context, token string, state *models.HandoffState) error {
	if err := s.store.SaveHandoff(ctx, token, *state); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist hand-off state")
	}
	return nil
}

func buildReceipt(name, grade string, rows []models.CheckRowState) export.Receipt {
	receipt := export.Receipt{
		ReceiptID:    uuid.NewString(),
		StudentName:  name,
		StudentGrade: grade,
		SubmittedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	for _, row := range rows {
		job := row.Row.Job()
		extras := make([]string, 0, 2)
		if job.IncludeAnswer {
			extras = append(extras, "answer")
		}
		if job.IncludeSheet {
			extras = append(extras, "answer sheet")
		}
		receipt.Jobs = append(receipt.Jobs, export.ReceiptJob{
			ExamLabel: row.Label,
			Copies:    job.Copies,
			Style:     job.Style,
			Extras:    strings.Join(extras, ", "),
		})
	}
	return receipt
}
