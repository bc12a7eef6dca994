package serverapp

import (
	"net/http"
	"sync"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/game"
	"github.com/codenameoperative/what-is-life-sub001/internal/notice"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The game is served to a single local player.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// frame is one message on the live feed.
type frame struct {
	Type    string          `json:"type"`
	State   *game.State     `json:"state,omitempty"`
	Notices []notice.Notice `json:"notices,omitempty"`
}

// hub fans notices out to live clients. Slow clients drop notices rather
// than block the scheduler.
type hub struct {
	mu   sync.Mutex
	subs map[chan []notice.Notice]struct{}
}

func newHub() *hub {
	return &hub{subs: map[chan []notice.Notice]struct{}{}}
}

func (h *hub) subscribe() (chan []notice.Notice, func()) {
	ch := make(chan []notice.Notice, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

func (h *hub) broadcast(ns []notice.Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ns:
		default:
		}
	}
}

// live streams every committed state and scheduler notice over a websocket.
func (s *Server) live(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf(`{"level":"warn","msg":"websocket_upgrade_failed","err":%q}`, err.Error())
		return
	}
	defer conn.Close()

	states, cancelStates := s.engine.Store.Subscribe()
	defer cancelStates()
	notices, cancelNotices := s.hub.subscribe()
	defer cancelNotices()

	// The read loop only exists to notice the client going away and to
	// process pongs.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(f frame) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(f) == nil
	}

	st := s.engine.Snapshot()
	if !send(frame{Type: "state", State: &st}) {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case st, ok := <-states:
			if !ok {
				return
			}
			if !send(frame{Type: "state", State: &st}) {
				return
			}
		case ns := <-notices:
			if !send(frame{Type: "notices", Notices: ns}) {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
