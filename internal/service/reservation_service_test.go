package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furukawa-sg/sg-reserve-api/internal/dto"
	"github.com/furukawa-sg/sg-reserve-api/internal/models"
	"github.com/furukawa-sg/sg-reserve-api/internal/repository"
	appErrors "github.com/furukawa-sg/sg-reserve-api/pkg/errors"
	"github.com/furukawa-sg/sg-reserve-api/pkg/export"
)

type printGatewayStub struct {
	exams     []models.ExamItem
	examCalls int

	submitErr      error
	lastSubmission *models.PrintJobSubmission
}

func (s *printGatewayStub) ExamsByID(ctx context.Context, auth string, ids []string) ([]models.ExamItem, error) {
	s.examCalls++
	return s.exams, nil
}

func (s *printGatewayStub) SubmitPrintJobs(ctx context.Context, auth string, submission models.PrintJobSubmission) error {
	if s.submitErr != nil {
		return s.submitErr
	}
	s.lastSubmission = &submission
	return nil
}

type receiptIssuerStub struct {
	url     string
	err     error
	receipt *export.Receipt
}

func (s *receiptIssuerStub) Issue(receipt export.Receipt) (string, error) {
	s.receipt = &receipt
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func checkExams() []models.ExamItem {
	return []models.ExamItem{
		{
			ExamID:            "e1",
			Year:              models.NewFlexYear(2025),
			Faculty:           "工学部",
			Term:              "前期",
			Subject:           "数学",
			Answer:            models.Truthy(true),
			AnswerSheet:       models.Truthy(true),
			PrintDefaultStyle: "B5",
		},
		{
			ExamID:            "e2",
			Year:              models.NewFlexYear(2024),
			Subject:           "英語",
			PrintDefaultStyle: "手差し",
		},
	}
}

func newReservationFixture(t *testing.T, gateway *printGatewayStub, receipts receiptIssuer) (*ReservationService, *repository.SessionRepository, string) {
	t.Helper()
	sessions := repository.NewSessionRepository(repository.NewMemoryKV(), time.Hour, time.Hour)
	svc := NewReservationService(gateway, sessions, receipts, nil)

	token := "handoff-1"
	err := sessions.SaveHandoff(context.Background(), token, models.HandoffState{
		SelectedExamIDs: []string{"e1", "e2"},
		Student:         models.StudentInfo{Name: "山田", Grade: "高3"},
		CreatedAt:       time.Now().UTC(),
	})
	require.NoError(t, err)

	return svc, sessions, token
}

func TestLoadCheckFailsClosedWithoutHandoff(t *testing.T) {
	svc, _, _ := newReservationFixture(t, &printGatewayStub{}, nil)

	_, err := svc.LoadCheck(context.Background(), "Bearer token", "subj", "gone")
	assert.Equal(t, appErrors.ErrHandoffExpired.Code, appErrors.FromError(err).Code)
}

func TestLoadCheckInitializesRowsOnce(t *testing.T) {
	gateway := &printGatewayStub{exams: checkExams()}
	svc, _, token := newReservationFixture(t, gateway, nil)
	ctx := context.Background()

	view, err := svc.LoadCheck(ctx, "Bearer token", "subj", token)
	require.NoError(t, err)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, models.PrintStyles, view.Styles)
	assert.Equal(t, "山田", view.Student.Name)

	first := view.Rows[0]
	assert.Equal(t, "e1", first.ExamID)
	assert.True(t, first.HasAnswer)
	assert.True(t, first.HasSheet)
	assert.Equal(t, 1, first.Row.MainCopies)
	assert.Equal(t, "B5", first.Row.MainStyle)
	assert.True(t, first.Row.IncludeAnswer)
	assert.Equal(t, 1, first.Row.AnswerCopies)

	// An unknown default style falls back to unspecified.
	second := view.Rows[1]
	assert.False(t, second.HasAnswer)
	assert.False(t, second.Row.IncludeAnswer)
	assert.Equal(t, 0, second.Row.AnswerCopies)
	assert.Equal(t, "", second.Row.MainStyle)

	// Rows persist with the hand-off; a reload must not refetch.
	_, err = svc.LoadCheck(ctx, "Bearer token", "subj", token)
	require.NoError(t, err)
	assert.Equal(t, 1, gateway.examCalls)
}

func TestLoadCheckPrefillsLastStudent(t *testing.T) {
	gateway := &printGatewayStub{exams: checkExams()}
	svc, sessions, token := newReservationFixture(t, gateway, nil)
	ctx := context.Background()

	require.NoError(t, sessions.SaveHandoff(ctx, token, models.HandoffState{
		SelectedExamIDs: []string{"e1"},
		CreatedAt:       time.Now().UTC(),
	}))
	require.NoError(t, sessions.SaveLastStudent(ctx, "subj", models.StudentInfo{Name: "佐藤", Grade: "高2"}))

	view, err := svc.LoadCheck(ctx, "Bearer token", "subj", token)
	require.NoError(t, err)
	assert.Equal(t, "佐藤", view.Student.Name)
	assert.Equal(t, "高2", view.Student.Grade)
}

func TestUpdateRowClampsAndValidates(t *testing.T) {
	gateway := &printGatewayStub{exams: checkExams()}
	svc, _, token := newReservationFixture(t, gateway, nil)
	ctx := context.Background()

	_, err := svc.LoadCheck(ctx, "Bearer token", "subj", token)
	require.NoError(t, err)

	zero := 0
	row, err := svc.UpdateRow(ctx, token, "e1", dto.UpdateRowRequest{MainCopies: &zero})
	require.NoError(t, err)
	assert.Equal(t, 1, row.Row.MainCopies)

	bad := "A0ポスター"
	_, err = svc.UpdateRow(ctx, token, "e1", dto.UpdateRowRequest{MainStyle: &bad})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	on := true
	_, err = svc.UpdateRow(ctx, token, "e2", dto.UpdateRowRequest{IncludeAnswer: &on})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateRow(ctx, token, "missing", dto.UpdateRowRequest{})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubmitZeroesExcludedSections(t *testing.T) {
	gateway := &printGatewayStub{exams: checkExams()}
	svc, _, token := newReservationFixture(t, gateway, nil)
	ctx := context.Background()

	_, err := svc.LoadCheck(ctx, "Bearer token", "subj", token)
	require.NoError(t, err)

	// Bump the answer copies, then exclude the section. The stored values go
	// stale on purpose; the submission must ignore them.
	five := 5
	style := "B4冊子"
	_, err = svc.UpdateRow(ctx, token, "e1", dto.UpdateRowRequest{AnswerCopies: &five, AnswerStyle: &style})
	require.NoError(t, err)
	off := false
	_, err = svc.UpdateRow(ctx, token, "e1", dto.UpdateRowRequest{IncludeAnswer: &off, IncludeSheet: &off})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "Bearer token", "subj", token, dto.SubmitRequest{Name: "山田", Grade: "高3"})
	require.NoError(t, err)

	require.NotNil(t, gateway.lastSubmission)
	require.Len(t, gateway.lastSubmission.Jobs, 2)
	job := gateway.lastSubmission.Jobs[0]
	assert.False(t, job.IncludeAnswer)
	assert.Equal(t, 0, job.AnswerCopies)
	assert.Equal(t, "", job.AnswerStyle)
	assert.False(t, job.IncludeSheet)
	assert.Equal(t, 0, job.SheetCopies)
	assert.Equal(t, "", job.SheetStyle)
	assert.Equal(t, 1, job.Copies)
}

func TestSubmitFailureRetainsHandoff(t *testing.T) {
	gateway := &printGatewayStub{exams: checkExams(), submitErr: assert.AnError}
	svc, sessions, token := newReservationFixture(t, gateway, nil)
	ctx := context.Background()

	_, err := svc.LoadCheck(ctx, "Bearer token", "subj", token)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "Bearer token", "subj", token, dto.SubmitRequest{Name: "山田", Grade: "高3"})
	require.Error(t, err)

	// The user can retry without redoing the selection.
	_, err = sessions.LoadHandoff(ctx, token)
	require.NoError(t, err)

	gateway.submitErr = nil
	_, err = svc.Submit(ctx, "Bearer token", "subj", token, dto.SubmitRequest{Name: "山田", Grade: "高3"})
	require.NoError(t, err)

	_, err = sessions.LoadHandoff(ctx, token)
	assert.ErrorIs(t, err, repository.ErrMiss)
}

func TestSubmitIssuesReceiptAndRemembersStudent(t *testing.T) {
	gateway := &printGatewayStub{exams: checkExams()}
	receipts := &receiptIssuerStub{url: "/api/receipts/tok"}
	svc, sessions, token := newReservationFixture(t, gateway, receipts)
	ctx := context.Background()

	_, err := svc.LoadCheck(ctx, "Bearer token", "subj", token)
	require.NoError(t, err)

	result, err := svc.Submit(ctx, "Bearer token", "subj", token, dto.SubmitRequest{Name: " 山田 ", Grade: " 高3 "})
	require.NoError(t, err)
	assert.Equal(t, 2, result.JobCount)
	assert.Equal(t, "/api/receipts/tok", result.ReceiptURL)
	assert.Equal(t, "/student/reservation", result.BackTo)
	assert.Equal(t, 1500, result.ReturnAfterMS)

	require.NotNil(t, receipts.receipt)
	assert.Equal(t, "山田", receipts.receipt.StudentName)
	assert.Len(t, receipts.receipt.Jobs, 2)

	last, err := sessions.LoadLastStudent(ctx, "subj")
	require.NoError(t, err)
	assert.Equal(t, models.StudentInfo{Name: "山田", Grade: "高3"}, last)
}

func TestSubmitReceiptFailureDoesNotFailSubmission(t *testing.T) {
	gateway := &printGatewayStub{exams: checkExams()}
	receipts := &receiptIssuerStub{err: assert.AnError}
	svc, _, token := newReservationFixture(t, gateway, receipts)
	ctx := context.Background()

	_, err := svc.LoadCheck(ctx, "Bearer token", "subj", token)
	require.NoError(t, err)

	result, err := svc.Submit(ctx, "Bearer token", "subj", token, dto.SubmitRequest{Name: "山田", Grade: "高3"})
	require.NoError(t, err)
	assert.Empty(t, result.ReceiptURL)
}

func TestSubmitValidation(t *testing.T) {
	gateway := &printGatewayStub{exams: checkExams()}
	svc, _, token := newReservationFixture(t, gateway, nil)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "Bearer token", "subj", token, dto.SubmitRequest{Name: "山田", Grade: "高3"})
	assert.Equal(t, appErrors.ErrStateOrder.Code, appErrors.FromError(err).Code)

	_, err = svc.LoadCheck(ctx, "Bearer token", "subj", token)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "Bearer token", "subj", token, dto.SubmitRequest{Name: "  ", Grade: "高3"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDoneMetadata(t *testing.T) {
	svc := NewReservationService(&printGatewayStub{}, nil, nil, nil)

	done := svc.Done()
	assert.Equal(t, "予約が完了しました。予約システムに戻ります。", done.Message)
	assert.Equal(t, "/student/reservation", done.BackTo)
	assert.Equal(t, 1500, done.ReturnAfterMS)
}
