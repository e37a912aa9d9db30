package matcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"votegate/internal/biometric/models"
	"votegate/pkg/platform/circuit"
)

var tracer = otel.Tracer("votegate/biometric/matcher")

// HTTPMatcher calls a remote matcher over JSON:
//
//	POST {base}/extract {"image": "<base64>"}                -> {"vector": [...], "quality": 0.93}
//	POST {base}/score   {"vector": [...], "image": "<b64>"}   -> {"score": 0.81}
//
// A 422 response means the sample is unusable. Transport errors, timeouts and 5xx
// responses count against the circuit breaker; while it is open calls fail fast
// with ErrUnavailable.
type HTTPMatcher struct {
	baseURL string
	client  *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type HTTPOption func(*HTTPMatcher)

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(m *HTTPMatcher) {
		if c != nil {
			m.client = c
		}
	}
}

func WithBreaker(b *circuit.Breaker) HTTPOption {
	return func(m *HTTPMatcher) {
		if b != nil {
			m.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) HTTPOption {
	return func(m *HTTPMatcher) {
		m.logger = logger
	}
}

// NewHTTP creates a matcher client. timeout bounds each call.
func NewHTTP(baseURL string, timeout time.Duration, opts ...HTTPOption) *HTTPMatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	m := &HTTPMatcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: circuit.New("face-matcher"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type extractRequest struct {
	Image  []byte `json:"image"`
	Source string `json:"source,omitempty"`
}

type extractResponse struct {
	Vector  []float64 `json:"vector"`
	Quality float64   `json:"quality"`
}

type scoreRequest struct {
	Vector []float64 `json:"vector"`
	Image  []byte    `json:"image"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

func (m *HTTPMatcher) Extract(ctx context.Context, sample models.Sample) (*models.Features, error) {
	ctx, span := tracer.Start(ctx, "FaceMatcher.Extract")
	defer span.End()

	var resp extractResponse
	if err := m.call(ctx, "/extract", extractRequest{Image: sample.Image, Source: sample.Source}, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(resp.Vector) == 0 {
		return nil, ErrSampleUnusable
	}
	span.SetAttributes(attribute.Float64("biometric.quality", resp.Quality))
	return &models.Features{Vector: resp.Vector, Quality: resp.Quality}, nil
}

func (m *HTTPMatcher) Score(ctx context.Context, enrolled []float64, sample models.Sample) (float64, error) {
	ctx, span := tracer.Start(ctx, "FaceMatcher.Score")
	defer span.End()

	var resp scoreResponse
	if err := m.call(ctx, "/score", scoreRequest{Vector: enrolled, Image: sample.Image}, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	if resp.Score < 0 || resp.Score > 1 {
		return 0, fmt.Errorf("face matcher returned score %v outside [0,1]", resp.Score)
	}
	span.SetAttributes(attribute.Float64("biometric.score", resp.Score))
	return resp.Score, nil
}

func (m *HTTPMatcher) call(ctx context.Context, path string, in, out any) error {
	if !m.breaker.Allow() {
		return fmt.Errorf("%w: circuit open", ErrUnavailable)
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode matcher request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build matcher request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		m.recordFailure(ctx, path, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		m.breaker.RecordSuccess()
		return ErrSampleUnusable
	case resp.StatusCode >= http.StatusInternalServerError:
		err := fmt.Errorf("matcher responded %d", resp.StatusCode)
		m.recordFailure(ctx, path, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case resp.StatusCode != http.StatusOK:
		m.breaker.RecordSuccess()
		return fmt.Errorf("matcher rejected request with status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("decode matcher response: %w", err)
	}
	m.breaker.RecordSuccess()
	return nil
}

func (m *HTTPMatcher) recordFailure(ctx context.Context, path string, err error) {
	_, change := m.breaker.RecordFailure()
	if change.Opened {
		m.logger.WarnContext(ctx, "face matcher circuit opened",
			"path", path,
			"error", err,
		)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		m.logger.WarnContext(ctx, "face matcher timed out", "path", path)
	}
}
