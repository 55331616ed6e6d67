package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/relaycall/signaling/config"
	"github.com/relaycall/signaling/internal/auth"
	"github.com/relaycall/signaling/internal/handlers"
	"github.com/relaycall/signaling/internal/models"
	"github.com/relaycall/signaling/internal/presence"
	"github.com/relaycall/signaling/internal/room"
	"github.com/relaycall/signaling/internal/turncred"
)

const (
	roomPassword = "room-secret"
	turnSecret   = "turn-secret"
)

func newTestServer(t *testing.T) (*httptest.Server, *room.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gateway, err := auth.New(roomPassword)
	require.NoError(t, err)

	minter, err := turncred.New(turncred.Config{
		SharedSecret: turnSecret,
		TTLSeconds:   600,
		Label:        "relay",
	})
	require.NoError(t, err)

	registry := room.NewRegistry()

	engine := gin.New()
	handlers.Register(engine, handlers.Deps{
		Gateway:  gateway,
		Minter:   minter,
		Registry: registry,
		Router:   room.NewRouter(registry),
		Presence: presence.Noop{},
		TURN:     config.TURNConfig{Secret: turnSecret, Domain: "turn.test", Port: "5349"},
	})

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv, registry
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) models.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	var env models.Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	return env
}

func requireNoEnvelope(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, frame, err := conn.ReadMessage()
	require.Error(t, err, "expected no frame, got %s", frame)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Users  int    `json:"users"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body.Status)
	require.Equal(t, 0, body.Users)
}

func TestLoginIssuesToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/auth", "application/json",
		bytes.NewBufferString(`{"password":"wrong"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/auth", "application/json",
		bytes.NewBufferString(fmt.Sprintf(`{"password":%q}`, roomPassword)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)

	// The issued token authenticates the TURN credentials endpoint.
	resp, err = http.Get(srv.URL + "/turn-credentials?token=" + body.Token)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTURNCredentialsRequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/turn-credentials")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/turn-credentials?password=wrong")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/turn-credentials?password=" + roomPassword)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		ICEServers []struct {
			URLs       []string `json:"urls"`
			Username   string   `json:"username"`
			Credential string   `json:"credential"`
		} `json:"iceServers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.ICEServers, 2)
	require.Empty(t, body.ICEServers[0].Username)
	require.NotEmpty(t, body.ICEServers[1].Username)
	require.NotEmpty(t, body.ICEServers[1].Credential)
	for _, url := range body.ICEServers[1].URLs {
		require.Contains(t, url, "turn.test:5349")
	}
}

func TestWebSocketRejectsBadCredentials(t *testing.T) {
	srv, registry := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?password=wrong"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 0, registry.Count())
}

func TestWebSocketAcceptsIssuedToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/auth", "application/json",
		bytes.NewBufferString(fmt.Sprintf(`{"password":%q}`, roomPassword)))
	require.NoError(t, err)
	defer resp.Body.Close()
	var body handlers.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	conn := dial(t, srv, "token="+body.Token)
	welcome := readEnvelope(t, conn)
	require.Equal(t, models.SignalTypeWelcome, welcome.Type)
	require.NotEmpty(t, welcome.ID)
}

func TestThreePeerJoinRouteLeave(t *testing.T) {
	srv, registry := newTestServer(t)

	connA := dial(t, srv, "password="+roomPassword)
	welcomeA := readEnvelope(t, connA)
	require.Equal(t, models.SignalTypeWelcome, welcomeA.Type)
	require.Empty(t, welcomeA.Users)
	idA := welcomeA.ID

	connB := dial(t, srv, "password="+roomPassword)
	welcomeB := readEnvelope(t, connB)
	require.ElementsMatch(t, []string{idA}, welcomeB.Users)
	idB := welcomeB.ID

	joinedB := readEnvelope(t, connA)
	require.Equal(t, models.SignalTypeUserJoined, joinedB.Type)
	require.Equal(t, idB, joinedB.ID)

	connC := dial(t, srv, "password="+roomPassword)
	welcomeC := readEnvelope(t, connC)
	require.ElementsMatch(t, []string{idA, idB}, welcomeC.Users)
	idC := welcomeC.ID

	joinedC := readEnvelope(t, connA)
	require.Equal(t, idC, joinedC.ID)
	joinedC = readEnvelope(t, connB)
	require.Equal(t, idC, joinedC.ID)

	// C sends A an offer with a spoofed from; A must see C's real id.
	offer := fmt.Sprintf(`{"type":"offer","target":%q,"from":"spoofed","sdp":{"type":"offer","sdp":"v=0"}}`, idA)
	require.NoError(t, connC.WriteMessage(websocket.TextMessage, []byte(offer)))

	require.NoError(t, connA.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := connA.ReadMessage()
	require.NoError(t, err)
	var routed map[string]any
	require.NoError(t, json.Unmarshal(frame, &routed))
	require.Equal(t, "offer", routed["type"])
	require.Equal(t, idC, routed["from"])

	// B leaves; A and C each see exactly one user-left for it.
	connB.Close()
	for _, conn := range []*websocket.Conn{connA, connC} {
		left := readEnvelope(t, conn)
		require.Equal(t, models.SignalTypeUserLeft, left.Type)
		require.Equal(t, idB, left.ID)
		requireNoEnvelope(t, conn)
	}

	require.Eventually(t, func() bool { return registry.Count() == 2 },
		time.Second, 10*time.Millisecond)
}
