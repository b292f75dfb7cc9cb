package service

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/furukawa-sg/sg-reserve-api/pkg/errors"
	"github.com/furukawa-sg/sg-reserve-api/pkg/export"
	"github.com/furukawa-sg/sg-reserve-api/pkg/storage"
)

func newReceiptFixture(t *testing.T, ttl time.Duration) *ReceiptService {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", ttl)
	return NewReceiptService(files, signer, "/api/receipts", nil, nil)
}

func testReceipt() export.Receipt {
	return export.Receipt{
		ReceiptID:    "rcpt-1",
		StudentName:  "Yamada",
		StudentGrade: "3",
		SubmittedAt:  "2026-09-01T10:00:00Z",
		Jobs: []export.ReceiptJob{
			{ExamLabel: "2025 Math", Copies: 2, Style: "B5", Extras: "answer"},
		},
	}
}

func TestReceiptIssueAndFetch(t *testing.T) {
	svc := newReceiptFixture(t, time.Hour)

	url, err := svc.Issue(testReceipt())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/api/receipts/"))

	token := strings.TrimPrefix(url, "/api/receipts/")
	file, filename, err := svc.Fetch(token)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	assert.Equal(t, "rcpt-1.pdf", filename)
	head := make([]byte, 4)
	_, err = io.ReadFull(file, head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(head))
}

func TestReceiptFetchInvalidToken(t *testing.T) {
	svc := newReceiptFixture(t, time.Hour)

	_, _, err := svc.Fetch("garbage")
	assert.Equal(t, appErrors.ErrReceiptTokenInvalid.Code, appErrors.FromError(err).Code)
}

func TestReceiptFetchExpiredToken(t *testing.T) {
	svc := newReceiptFixture(t, 10*time.Millisecond)

	url, err := svc.Issue(testReceipt())
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	token := strings.TrimPrefix(url, "/api/receipts/")
	_, _, err = svc.Fetch(token)
	assert.Equal(t, appErrors.ErrReceiptExpired.Code, appErrors.FromError(err).Code)
}
