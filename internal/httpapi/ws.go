package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/itemgate/catalog-validator/internal/dispatch"
	"github.com/itemgate/catalog-validator/internal/logging"
)

// wsWriteTimeout bounds a single event write to a stalled observer
const wsWriteTimeout = 10 * time.Second

// Observe handles GET /sessions/{sessionID}/ws. It upgrades the connection,
// installs a dispatcher as the session's subscriber and starts validation.
// Findings are streamed as JSON events, then a completion event is sent and
// the socket is closed.
//
// An unknown session is rejected with 404 before any upgrade happens, so the
// observer channel is never created for it. A disconnecting observer stops
// delivery but not the validation run.
func (h *Handler) Observe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	logger := logging.FromContext(r.Context()).With("session_id", id)

	s, err := h.registry.Get(id)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "session not found")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Warn("websocket accept failed", "error", err)
		return
	}

	d := dispatch.New(&wsChannel{conn: conn}, h.registry, id, h.eventBuffer)
	if err := h.registry.Attach(id, d); err != nil {
		rejectObserver(conn)
		return
	}

	logger.Info("observer attached", "items", len(s.Items))

	d.Start(r.Context())
	h.engine.Run(s.Items, d)

	// No application-level messages are expected from the observer;
	// CloseRead keeps control frames flowing and reports the hang-up.
	readCtx := conn.CloseRead(r.Context())
	select {
	case <-d.Done():
		logger.Info("session stream finished", "broken", d.Broken())
	case <-readCtx.Done():
		// Observer went away. The engine runs to completion; the
		// dispatcher trips on its next send and drops the rest.
		logger.Info("observer disconnected")
	}
}

// rejectObserver closes a just-accepted socket whose session was removed
// between lookup and attach. The closure is not a normal one: the observer
// asked for a stream that no longer exists.
func rejectObserver(conn *websocket.Conn) {
	conn.Close(websocket.StatusPolicyViolation, "session not found")
}

// wsChannel adapts a websocket connection to the dispatcher's delivery
// channel contract.
type wsChannel struct {
	conn *websocket.Conn
}

func (c *wsChannel) Send(ctx context.Context, ev dispatch.Event) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.conn, ev)
}

func (c *wsChannel) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "validation complete")
}
