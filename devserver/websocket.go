package devserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"moria.us/lettertab/watcher"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 60 * time.Second
)

var upgrader = websocket.Upgrader{}

type wshandler struct {
	server *Server
	conn   *websocket.Conn
}

func (s *Server) serveSocket(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorln("Upgrade:", err)
		return
	}
	logResponse(r, http.StatusSwitchingProtocols, "")
	wh := wshandler{
		server: s,
		conn:   c,
	}
	endch := make(chan struct{})
	go wh.read(endch)
	go wh.write(endch)
}

func (h *wshandler) read(endch chan struct{}) {
	defer close(endch)
	for {
		mt, _, err := h.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.Errorln("Websocket read:", err)
			}
			break
		}
		logrus.Debugln("Websocket message:", mt)
	}
}

func (h *wshandler) write(endch chan struct{}) {
	defer h.conn.Close()
	ch := make(chan *watcher.State, 10)
	st := h.server.addListener(ch)
	defer h.server.removeListener(ch)
	if err := h.send(st); err != nil {
		logrus.Error("Websocket send:", err)
		return
	}
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				return
			}
			if err := h.send(st); err != nil {
				logrus.Error("Websocket send:", err)
				return
			}
		case <-t.C:
			h.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := h.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logrus.Error("Websocket ping:", err)
				return
			}
		case <-endch:
			return
		}
	}
}

// A stateMessage is sent to websocket clients whenever the file is
// converted.
type stateMessage struct {
	State  string `json:"state"`
	Output string `json:"output,omitempty"`
	Notes  int    `json:"notes,omitempty"`
	Error  string `json:"error,omitempty"`
}

func newStateMessage(st *watcher.State) *stateMessage {
	switch {
	case st == nil:
		return &stateMessage{State: "building"}
	case st.Err != nil:
		return &stateMessage{State: "fail", Error: st.Err.Error()}
	default:
		return &stateMessage{State: "ok", Output: st.Output, Notes: len(st.Notes)}
	}
}

func (h *wshandler) send(st *watcher.State) error {
	md, err := json.Marshal(newStateMessage(st))
	if err != nil {
		return err
	}
	h.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return h.conn.WriteMessage(websocket.TextMessage, md)
}
