// Package server exposes the assistant over a websocket gateway for text
// clients, with health and metrics endpoints alongside.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/miravoice/mira-go-sdk/engine"
	"github.com/miravoice/mira-go-sdk/observability"
)

// endSessionTimeout bounds the memory flush when a client disconnects.
const endSessionTimeout = 30 * time.Second

// Message is the wire format in both directions. Client sends
// {"type":"user_text","text":...}; the gateway replies with
// {"type":"reply","text":...} and sends {"type":"session_ended"} after
// the final memory flush.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Config wires a gateway. NewEngine must return a fresh engine per
// connection; each session owns its own conversation memory.
type Config struct {
	NewEngine func() (*engine.Engine, error)

	// Metrics is optional; when set the gateway exposes /metrics and
	// tracks session gauges.
	Metrics *observability.Metrics

	// CheckOrigin overrides the upgrader's origin policy. Nil keeps the
	// default same-origin check.
	CheckOrigin func(r *http.Request) bool
}

// Gateway serves assistant sessions over websocket connections.
type Gateway struct {
	cfg      Config
	upgrader websocket.Upgrader
}

// NewGateway creates a gateway from the config.
func NewGateway(cfg Config) (*Gateway, error) {
	if cfg.NewEngine == nil {
		return nil, fmt.Errorf("server: NewEngine factory is required")
	}
	g := &Gateway{cfg: cfg}
	if cfg.CheckOrigin != nil {
		g.upgrader.CheckOrigin = cfg.CheckOrigin
	}
	return g, nil
}

// Handler returns the gateway's HTTP mux: /ws for sessions, /healthz, and
// /metrics when metrics are configured.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleSession)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	if g.cfg.Metrics != nil {
		mux.Handle("/metrics", g.cfg.Metrics.Handler())
	}
	return mux
}

func (g *Gateway) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SERVER] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	eng, err := g.cfg.NewEngine()
	if err != nil {
		log.Printf("[SERVER] engine setup failed: %v", err)
		return
	}

	if g.cfg.Metrics != nil {
		g.cfg.Metrics.ActiveSessions.Inc()
		defer g.cfg.Metrics.ActiveSessions.Dec()
	}

	log.Printf("[SERVER] session opened from %s", r.RemoteAddr)
	g.serveSession(r.Context(), conn, eng)
}

func (g *Gateway) serveSession(ctx context.Context, conn *websocket.Conn, eng *engine.Engine) {
	// Flush memory whichever way the session ends.
	defer func() {
		endCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), endSessionTimeout)
		defer cancel()
		log.Printf("[SERVER] %s", eng.EndSession(endCtx))
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[SERVER] session read failed: %v", err)
			}
			return
		}
		g.countMessage("in")

		switch msg.Type {
		case "user_text":
			if msg.Text == "" {
				continue
			}
			reply, err := eng.Respond(ctx, msg.Text)
			if err != nil {
				log.Printf("[SERVER] respond failed: %v", err)
				g.writeMessage(conn, Message{Type: "error", Text: "could not generate a reply"})
				continue
			}
			g.writeMessage(conn, Message{Type: "reply", Text: reply})
		case "end_session":
			g.writeMessage(conn, Message{Type: "session_ended"})
			return
		default:
			g.writeMessage(conn, Message{Type: "error", Text: "unknown message type: " + msg.Type})
		}
	}
}

func (g *Gateway) writeMessage(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[SERVER] session write failed: %v", err)
		return
	}
	g.countMessage("out")
}

func (g *Gateway) countMessage(direction string) {
	if g.cfg.Metrics != nil {
		g.cfg.Metrics.WSMessages.WithLabelValues(direction).Inc()
	}
}
