package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/miravoice/mira-go-sdk/core"
	"github.com/miravoice/mira-go-sdk/engine"
	"github.com/miravoice/mira-go-sdk/memory"
	"github.com/miravoice/mira-go-sdk/observability"
)

type stubSummarizer struct{}

func (stubSummarizer) Summarize(context.Context, []core.Turn) core.Digest {
	return core.Digest{Summary: "s", Timestamp: "t"}
}

type stubFacts struct{}

func (stubFacts) Add(context.Context, string, map[string]string) (string, error) { return "id", nil }
func (stubFacts) RelevantInfo(context.Context, string, int) string               { return "" }
func (stubFacts) Count() int                                                     { return 0 }

type echoGen struct{}

func (echoGen) Generate(_ context.Context, _, prompt string) (string, error) {
	// Reply with the query line so the test can assert round-tripping.
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "User's current query: ") {
			return "echo: " + strings.TrimPrefix(line, "User's current query: "), nil
		}
	}
	return "echo", nil
}

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	gw, err := NewGateway(Config{
		NewEngine: func() (*engine.Engine, error) {
			mem := memory.NewConversationManager(memory.Config{}, stubSummarizer{}, stubFacts{}, stubFacts{})
			return engine.New(engine.Config{AIName: "Mira"}, echoGen{}, mem), nil
		},
		Metrics:     observability.NewMetrics(),
		CheckOrigin: func(*http.Request) bool { return true },
	})
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	return gw
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	return conn
}

func TestSessionRoundTrip(t *testing.T) {
	srv := httptest.NewServer(newTestGateway(t).Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	if err := conn.WriteJSON(Message{Type: "user_text", Text: "hello gateway"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply Message
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Type != "reply" || reply.Text != "echo: hello gateway" {
		t.Fatalf("reply = %+v", reply)
	}
}

func TestSessionEndMessage(t *testing.T) {
	srv := httptest.NewServer(newTestGateway(t).Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	if err := conn.WriteJSON(Message{Type: "end_session"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "session_ended" {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestUnknownMessageType(t *testing.T) {
	srv := httptest.NewServer(newTestGateway(t).Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	if err := conn.WriteJSON(Message{Type: "audio_frame"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "error" || !strings.Contains(msg.Text, "audio_frame") {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv := httptest.NewServer(newTestGateway(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", resp.StatusCode)
	}
}

func TestNewGatewayRequiresFactory(t *testing.T) {
	if _, err := NewGateway(Config{}); err == nil {
		t.Fatal("NewGateway without factory succeeded")
	}
}
