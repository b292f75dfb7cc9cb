package service

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/furukawa-sg/sg-reserve-api/pkg/export"
	appErrors "github.com/furukawa-sg/sg-reserve-api/pkg/errors"
	"github.com/furukawa-sg/sg-reserve-api/pkg/storage"
)

type receiptFiles interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ReceiptService renders submission receipts, stores the PDFs and hands out
// signed, expiring download links. Receipts are a convenience copy; the
// upstream remains the system of record.
type ReceiptService struct {
	renderer *export.ReceiptRenderer
	files    receiptFiles
	signer   *storage.SignedURLSigner
	basePath string
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewReceiptService wires the renderer, file store and signer together.
// basePath is the public route prefix the token is appended to; metrics may
// be nil.
func NewReceiptService(files receiptFiles, signer *storage.SignedURLSigner, basePath string, metrics *MetricsService, logger *zap.Logger) *ReceiptService {
	if basePath == "" {
		basePath = "/api/receipts"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptService{
		renderer: export.NewReceiptRenderer(),
		files:    files,
		signer:   signer,
		basePath: strings.TrimRight(basePath, "/"),
		metrics:  metrics,
		logger:   logger,
	}
}

// Issue renders and stores the receipt, returning its signed download URL.
func (s *ReceiptService) Issue(receipt export.Receipt) (string, error) {
	data, err := s.renderer.Render(receipt)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render receipt")
	}

	relPath := fmt.Sprintf("%s/%s.pdf", time.Now().UTC().Format("2006/01"), receipt.ReceiptID)
	if _, err := s.files.Save(relPath, data); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store receipt")
	}

	token, _, err := s.signer.Generate(receipt.ReceiptID, relPath)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign receipt link")
	}
	s.metrics.RecordReceiptIssued()
	return s.basePath + "/" + token, nil
}

// Fetch validates the signed token and opens the referenced PDF.
func (s *ReceiptService) Fetch(token string) (*os.File, string, error) {
	receiptID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return nil, "", appErrors.ErrReceiptExpired
		}
		return nil, "", appErrors.ErrReceiptTokenInvalid
	}

	file, err := s.files.Open(relPath)
	if err != nil {
		// Signed but already cleaned up.
		return nil, "", appErrors.ErrReceiptExpired
	}
	return file, receiptID + ".pdf", nil
}

// Cleanup removes receipts older than the TTL.
func (s *ReceiptService) Cleanup(ttl time.Duration) {
	deleted, err := s.files.CleanupOlderThan(ttl)
	if err != nil {
		s.logger.Warn("receipt_cleanup_failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("receipt_cleanup", zap.Int("deleted", len(deleted)))
	}
}
