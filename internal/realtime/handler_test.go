package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"votegate/internal/platform/logger"
	authmw "votegate/pkg/platform/middleware/auth"
	dErrors "votegate/pkg/domain-errors"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(_ context.Context, token string) (*authmw.Claims, error) {
	switch token {
	case "full":
		return &authmw.Claims{VoterID: "AB12CD34", Role: "voter", Phase: authmw.PhaseFull}, nil
	case "limited":
		return &authmw.Claims{VoterID: "AB12CD34", Phase: authmw.PhaseLimited}, nil
	}
	return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token").WithReason(dErrors.ReasonTokenInvalid)
}

type HandlerSuite struct {
	suite.Suite
	hub    *Hub
	server *httptest.Server
	wsURL  string
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.hub = NewHub(WithLogger(logger.Discard()))
	r := chi.NewRouter()
	NewHandler(s.hub, stubVerifier{}, "admin-secret", logger.Discard()).Register(r)
	s.server = httptest.NewServer(r)
	s.wsURL = "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
}

func (s *HandlerSuite) TearDownTest() {
	s.hub.Close()
	s.server.Close()
}

func (s *HandlerSuite) dial(query string, header http.Header) (*websocket.Conn, *http.Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return websocket.Dial(ctx, s.wsURL+query, &websocket.DialOptions{HTTPHeader: header})
}

func (s *HandlerSuite) waitForRoom(room string, size int) {
	s.Eventually(func() bool { return s.hub.RoomSize(room) == size }, 2*time.Second, 10*time.Millisecond)
}

func (s *HandlerSuite) read(conn *websocket.Conn) map[string]any {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	s.Require().NoError(err)
	var out map[string]any
	s.Require().NoError(json.Unmarshal(data, &out))
	return out
}

func (s *HandlerSuite) TestRejectsBeforeUpgrade() {
	cases := []struct {
		name   string
		query  string
		header http.Header
	}{
		{"no token", "", nil},
		{"garbled token", "?token=nope", nil},
		{"limited token", "?token=limited", nil},
		{"wrong admin token", "?role=admin&token=guess", nil},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, resp, err := s.dial(tc.query, tc.header)
			s.Require().Error(err)
			s.Require().NotNil(resp)
			s.Equal(http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func (s *HandlerSuite) TestVoterJoinsDefaultRoomsAndReceivesEvents() {
	conn, _, err := s.dial("", http.Header{"Authorization": []string{"Bearer full"}})
	s.Require().NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	s.waitForRoom(VoterRoom("AB12CD34"), 1)
	s.Equal(1, s.hub.RoomSize(RoomVoters))
	s.Equal(1, s.hub.RoomSize(RoomPublic))

	s.hub.Broadcast(VoterRoom("AB12CD34"), Event{Type: EventVerificationProgress})
	msg := s.read(conn)
	s.Equal(EventVerificationProgress, msg["type"])
}

func (s *HandlerSuite) TestJoinElectionRoom() {
	conn, _, err := s.dial("?token=full", nil)
	s.Require().NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := context.Background()
	s.Require().NoError(conn.Write(ctx, websocket.MessageText, []byte(`{"action":"join","room":"election:e1"}`)))
	ack := s.read(conn)
	s.Equal("ack", ack["type"])
	s.waitForRoom(ElectionRoom("e1"), 1)

	s.Require().NoError(conn.Write(ctx, websocket.MessageText, []byte(`{"action":"join","room":"admins"}`)))
	rejected := s.read(conn)
	s.Equal("error", rejected["type"])
	s.Zero(s.hub.RoomSize(RoomAdmins))

	s.hub.Broadcast(ElectionRoom("e1"), Event{Type: EventVoteCast})
	s.Equal(EventVoteCast, s.read(conn)["type"])
}

func (s *HandlerSuite) TestAdminConnection() {
	conn, _, err := s.dial("?role=admin", http.Header{"X-Admin-Token": []string{"admin-secret"}})
	s.Require().NoError(err)

	s.waitForRoom(RoomAdmins, 1)
	conn.Close(websocket.StatusNormalClosure, "")
	s.waitForRoom(RoomAdmins, 0)
}
