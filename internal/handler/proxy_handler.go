package handler

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/furukawa-sg/sg-reserve-api/internal/service"
	appErrors "github.com/furukawa-sg/sg-reserve-api/pkg/errors"
	"github.com/furukawa-sg/sg-reserve-api/pkg/response"
)

// ProxyHandler relays requests to the upstream API verbatim. It never
// rewrites upstream responses: status, body and content type pass through
// unchanged so clients see exactly what the upstream said.
type ProxyHandler struct {
	baseURL string
	http    *http.Client
	metrics *service.MetricsService
	logger  *zap.Logger
}

// NewProxyHandler constructs the relay. baseURL may be empty; requests then
// fail with the configuration error instead of attempting the network.
func NewProxyHandler(baseURL string, httpClient *http.Client, metrics *service.MetricsService, logger *zap.Logger) *ProxyHandler {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProxyHandler{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		metrics: metrics,
		logger:  logger,
	}
}

// Relay godoc
// @Summary Relay a request to the upstream API
// @Tags Proxy
// @Param path path string true "Upstream path"
// @Success 200
// @Router /api/proxy/{path} [get]
func (h *ProxyHandler) Relay(c *gin.Context) {
	rel := strings.Trim(c.Param("path"), "/")
	if rel == "" {
		response.Error(c, appErrors.ErrMissingPath)
		return
	}
	h.forward(c, rel)
}

// Exams godoc
// @Summary Fetch the exam list through the relay
// @Tags Proxy
// @Produce json
// @Success 200
// @Router /api/exams [get]
func (h *ProxyHandler) Exams(c *gin.Context) {
	// The shortcut requires a credential before any network is attempted.
	if c.GetHeader("Authorization") == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	h.forward(c, "exams")
}

func (h *ProxyHandler) forward(c *gin.Context, rel string) {
	if h.baseURL == "" {
		response.Error(c, appErrors.ErrUpstreamUnset)
		return
	}

	// Each segment is escaped individually; the raw query string is appended
	// untouched so repeated keys survive.
	segments := strings.Split(rel, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	target := h.baseURL + "/" + strings.Join(segments, "/")
	if raw := c.Request.URL.RawQuery; raw != "" {
		target += "?" + raw
	}

	var body io.Reader
	method := c.Request.Method
	if method != http.MethodGet && method != http.MethodHead {
		body = c.Request.Body
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), method, target, body)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, appErrors.ErrUpstreamFailure.Message))
		return
	}

	// Only the content type and the caller's credential travel upstream.
	if ct := c.GetHeader("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if auth := c.GetHeader("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	req.Header.Set("Cache-Control", "no-store")

	start := time.Now()
	resp, err := h.http.Do(req)
	if err != nil {
		h.metrics.ObserveUpstreamRequest(method, 0, time.Since(start))
		h.logger.Warn("proxy_upstream_unreachable", zap.String("target", target), zap.Error(err))
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, appErrors.ErrUpstreamFailure.Message))
		return
	}
	defer resp.Body.Close() //nolint:errcheck
	h.metrics.ObserveUpstreamRequest(method, resp.StatusCode, time.Since(start))

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(resp.StatusCode, resp.ContentLength, contentType, resp.Body, nil)
}
