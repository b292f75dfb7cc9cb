package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/furukawa-sg/sg-reserve-api/internal/dto"
	"github.com/furukawa-sg/sg-reserve-api/internal/models"
	appErrors "github.com/furukawa-sg/sg-reserve-api/pkg/errors"
)

// Client is the typed view onto the remote exam/print-job API. Every call is
// a single attempt with no caching; credentials are relayed, never minted.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// ExamScope filters the exam list by the wizard's upper tiers.
type ExamScope struct {
	Kind     string
	Category string
	Org      string
	Area     string
}

// New builds a client. baseURL may be empty; calls then fail with the
// configuration error instead of attempting the network.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// Catalog fetches the selectable exam metadata.
func (c *Client) Catalog(ctx context.Context, auth string) ([]models.CatalogEntry, error) {
	body, err := c.do(ctx, http.MethodGet, "/exams/meta", auth, nil)
	if err != nil {
		return nil, err
	}
	var items []models.CatalogEntry
	if err := decodeItems(body, &items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, "malformed catalog response")
	}
	return items, nil
}

// Exams fetches the exam list scoped to the selected tiers.
func (c *Client) Exams(ctx context.Context, auth string, scope ExamScope) ([]models.ExamItem, error) {
	qs := url.Values{}
	qs.Set("kind", scope.Kind)
	qs.Set("category", scope.Category)
	qs.Set("org_name", scope.Org)
	if scope.Area != "" {
		qs.Set("area", scope.Area)
	}

	body, err := c.do(ctx, http.MethodGet, "/exams?"+qs.Encode(), auth, nil)
	if err != nil {
		return nil, err
	}
	var items []models.ExamItem
	if err := decodeItems(body, &items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, "malformed exam list response")
	}
	return items, nil
}

// ExamsByID batch-fetches full details for an explicit id list.
func (c *Client) ExamsByID(ctx context.Context, auth string, ids []string) ([]models.ExamItem, error) {
	payload, err := json.Marshal(map[string][]string{"exam_ids": ids})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode exam id list")
	}

	body, err := c.do(ctx, http.MethodPost, "/exams", auth, payload)
	if err != nil {
		return nil, err
	}
	var items []models.ExamItem
	if err := decodeItems(body, &items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, "malformed exam detail response")
	}
	return items, nil
}

// SubmitPrintJobs posts the reservation. The upstream's error text is
// surfaced verbatim so the user can see what was rejected.
func (c *Client) SubmitPrintJobs(ctx context.Context, auth string, submission models.PrintJobSubmission) error {
	payload, err := json.Marshal(submission)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode print job submission")
	}
	_, err = c.do(ctx, http.MethodPost, "/print-jobs", auth, payload)
	return err
}

// CreateSignupRequest forwards a registration request. No credential is
// required: applicants do not have accounts yet.
func (c *Client) CreateSignupRequest(ctx context.Context, payload dto.SignupForward) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode signup request")
	}
	_, err = c.do(ctx, http.MethodPost, "/signup-requests", "", body)
	return err
}

func (c *Client) do(ctx context.Context, method, pathWithQuery, auth string, body []byte) ([]byte, error) {
	if c.baseURL == "" {
		return nil, appErrors.ErrUpstreamUnset
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+pathWithQuery, reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, "build upstream request")
	}
	req.Header.Set("Cache-Control", "no-store")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, appErrors.ErrUpstreamFailure.Message)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, "read upstream response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := strings.TrimSpace(string(raw))
		if message == "" {
			message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		c.logger.Warn("upstream_error",
			zap.String("method", method),
			zap.String("path", pathWithQuery),
			zap.Int("status", resp.StatusCode),
		)
		return nil, appErrors.New(appErrors.ErrUpstreamFailure.Code, resp.StatusCode, message)
	}

	return raw, nil
}

// decodeItems unwraps the upstream list envelope: the record array is found
// under the first present of "items", "Items" or "data.items".
func decodeItems(body []byte, dest interface{}) error {
	var envelope struct {
		Items      json.RawMessage `json:"items"`
		LegacyItem json.RawMessage `json:"Items"`
		Data       struct {
			Items json.RawMessage `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return err
	}

	for _, raw := range []json.RawMessage{envelope.Items, envelope.LegacyItem, envelope.Data.Items} {
		if len(raw) > 0 && string(raw) != "null" {
			return json.Unmarshal(raw, dest)
		}
	}
	return nil
}
