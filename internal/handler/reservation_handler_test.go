package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furukawa-sg/sg-reserve-api/internal/models"
	"github.com/furukawa-sg/sg-reserve-api/internal/repository"
	"github.com/furukawa-sg/sg-reserve-api/internal/service"
)

type reservationGatewayStub struct {
	exams []models.ExamItem
}

func (s *reservationGatewayStub) ExamsByID(ctx context.Context, auth string, ids []string) ([]models.ExamItem, error) {
	return s.exams, nil
}

func (s *reservationGatewayStub) SubmitPrintJobs(ctx context.Context, auth string, submission models.PrintJobSubmission) error {
	return nil
}

func reservationRouter(t *testing.T) (*gin.Engine, *repository.SessionRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := repository.NewSessionRepository(repository.NewMemoryKV(), time.Hour, time.Hour)
	gateway := &reservationGatewayStub{exams: []models.ExamItem{
		{ExamID: "e1", Year: models.NewFlexYear(2025), Subject: "数学"},
	}}
	h := NewReservationHandler(service.NewReservationService(gateway, sessions, nil, nil))

	r := gin.New()
	r.GET("/api/reservations/check", h.Check)
	r.PATCH("/api/reservations/check/rows/:examID", h.UpdateRow)
	r.POST("/api/reservations/submit", h.Submit)
	r.GET("/api/reservations/done", h.Done)
	return r, sessions
}

func TestReservationCheckRequiresHandoffHeader(t *testing.T) {
	r, _ := reservationRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/reservations/check", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "X-Handoff-Token")
}

func TestReservationCheckExpiredHandoff(t *testing.T) {
	r, _ := reservationRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/reservations/check", nil)
	req.Header.Set(HandoffTokenHeader, "expired-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusGone, w.Code)
	assert.Contains(t, w.Body.String(), "HANDOFF_EXPIRED")
}

func TestReservationCheckHappyPath(t *testing.T) {
	r, sessions := reservationRouter(t)
	require.NoError(t, sessions.SaveHandoff(context.Background(), "tok", models.HandoffState{
		SelectedExamIDs: []string{"e1"},
		Student:         models.StudentInfo{Name: "山田", Grade: "高3"},
		CreatedAt:       time.Now().UTC(),
	}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/reservations/check", nil)
	req.Header.Set(HandoffTokenHeader, "tok")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"exam_id":"e1"`)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestReservationDone(t *testing.T) {
	r, _ := reservationRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/reservations/done", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "予約が完了しました")
	assert.Contains(t, w.Body.String(), `"return_after_ms":1500`)
}
