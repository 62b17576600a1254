package monitor

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/banshee-data/motion.swarm/internal/monitoring"
	"github.com/banshee-data/motion.swarm/internal/motion"
	"github.com/banshee-data/motion.swarm/internal/sim"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds what a viewer may send us
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
}

// AgentFrame is one websocket message: everything a browser needs to draw
// a frame of the swarm.
type AgentFrame struct {
	Tick     int64            `json:"tick"`
	Width    int              `json:"width"`
	Height   int              `json:"height"`
	Policy   string           `json:"policy"`
	Agents   []sim.AgentState `json:"agents"`
	Active   []motion.Hotspot `json:"active"`
	Pointer  sim.PointerState `json:"pointer"`
	Pulse    sim.PulseState   `json:"pulse"`
	Respawns int              `json:"respawns"`
}

func newAgentFrame(s sim.Snapshot) AgentFrame {
	f := AgentFrame{
		Tick:     s.Tick,
		Width:    s.Width,
		Height:   s.Height,
		Policy:   s.Policy,
		Agents:   s.Agents,
		Active:   s.Active,
		Pointer:  s.Pointer,
		Pulse:    s.Pulse,
		Respawns: s.Respawns,
	}
	if f.Agents == nil {
		f.Agents = []sim.AgentState{}
	}
	if f.Active == nil {
		f.Active = []motion.Hotspot{}
	}
	return f
}

// handleAgentStream upgrades to a websocket and pushes one AgentFrame per
// stream interval. Frames are skipped while the simulation has not ticked.
func (ws *WebServer) handleAgentStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		monitoring.Diagf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	monitoring.Diagf("agent stream opened for %s", r.RemoteAddr)

	done := make(chan struct{})
	go readPump(conn, done)

	frames := ws.clock.NewTicker(ws.streamInterval)
	defer frames.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	lastTick := int64(-1)
	for {
		select {
		case <-done:
			monitoring.Diagf("agent stream closed for %s", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		case <-ws.closing:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-frames.C():
			snap := ws.sim.Snapshot()
			if snap.Tick == lastTick {
				continue
			}
			lastTick = snap.Tick
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(newAgentFrame(snap)); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection so control frames are handled and a
// closed viewer is noticed. Viewers are not expected to send data.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
