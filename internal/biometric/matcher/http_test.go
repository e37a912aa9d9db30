package matcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"votegate/internal/biometric/models"
	"votegate/internal/platform/logger"
	"votegate/pkg/platform/circuit"
)

type HTTPMatcherSuite struct {
	suite.Suite
	status  atomic.Int32
	delay   atomic.Int64
	calls   atomic.Int32
	server  *httptest.Server
	matcher *HTTPMatcher
}

func TestHTTPMatcherSuite(t *testing.T) {
	suite.Run(t, new(HTTPMatcherSuite))
}

func (s *HTTPMatcherSuite) SetupTest() {
	s.status.Store(http.StatusOK)
	s.delay.Store(0)
	s.calls.Store(0)
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		if d := time.Duration(s.delay.Load()); d > 0 {
			time.Sleep(d)
		}
		status := int(s.status.Load())
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/extract":
			_ = json.NewEncoder(w).Encode(map[string]any{"vector": []float64{0.5, 0.5}, "quality": 0.9})
		case "/score":
			var req scoreRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			score := 0.2
			if string(req.Image) == "match" {
				score = 0.91
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"score": score})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	s.matcher = NewHTTP(s.server.URL, 200*time.Millisecond,
		WithBreaker(circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))),
		WithLogger(logger.Discard()),
	)
}

func (s *HTTPMatcherSuite) TearDownTest() {
	s.server.Close()
}

func (s *HTTPMatcherSuite) TestExtract() {
	f, err := s.matcher.Extract(context.Background(), models.Sample{Image: []byte("face")})
	s.Require().NoError(err)
	s.Equal([]float64{0.5, 0.5}, f.Vector)
	s.InDelta(0.9, f.Quality, 1e-9)
}

func (s *HTTPMatcherSuite) TestScore() {
	score, err := s.matcher.Score(context.Background(), []float64{0.5, 0.5}, models.Sample{Image: []byte("match")})
	s.Require().NoError(err)
	s.InDelta(0.91, score, 1e-9)
}

func (s *HTTPMatcherSuite) TestUnprocessableSampleIsUnusable() {
	s.status.Store(http.StatusUnprocessableEntity)
	_, err := s.matcher.Extract(context.Background(), models.Sample{Image: []byte("blurry")})
	s.True(errors.Is(err, ErrSampleUnusable))
}

func (s *HTTPMatcherSuite) TestTimeoutIsUnavailable() {
	s.delay.Store(int64(time.Second))
	_, err := s.matcher.Score(context.Background(), []float64{1}, models.Sample{Image: []byte("x")})
	s.True(errors.Is(err, ErrUnavailable))
}

func (s *HTTPMatcherSuite) TestOpenCircuitFailsFast() {
	s.status.Store(http.StatusBadGateway)
	for range 2 {
		_, err := s.matcher.Extract(context.Background(), models.Sample{Image: []byte("x")})
		s.True(errors.Is(err, ErrUnavailable))
	}
	before := s.calls.Load()

	s.status.Store(http.StatusOK)
	_, err := s.matcher.Extract(context.Background(), models.Sample{Image: []byte("x")})
	s.True(errors.Is(err, ErrUnavailable))
	s.Equal(before, s.calls.Load(), "open circuit must not reach the server")
}
