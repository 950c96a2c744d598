// Package inspect exposes the walker's internals as read-only snapshots and
// streams them as JSON over a websocket, so external debug overlays can draw
// feet, normals and sample points without reaching into live state.
package inspect

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "inspect",
})

// LegSnapshot is one leg's public state.
type LegSnapshot struct {
	Name    string     `json:"name"`
	Foot    [3]float64 `json:"foot"`
	Planted [3]float64 `json:"planted"`
	Moving  bool       `json:"moving"`
}

// Snapshot is one frame of walker state.
type Snapshot struct {
	Time     float64       `json:"time"`
	Position [3]float64    `json:"position"`
	Rotation [4]float64    `json:"rotation"`
	Grounded bool          `json:"grounded"`
	Normal   [3]float64    `json:"normal"`
	Legs     []LegSnapshot `json:"legs,omitempty"`

	// SamplePoints are the ground detector's current probe offsets.
	SamplePoints [][3]float64 `json:"sample_points,omitempty"`
}

// Source produces snapshots on demand. Implementations must copy, not
// alias, live state: snapshots outlive the tick they were taken on.
type Source interface {
	Snapshot() Snapshot
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() Snapshot

func (f SourceFunc) Snapshot() Snapshot { return f() }

// Server streams snapshots to every connected websocket client at a fixed
// interval. Snapshot calls run on connection goroutines, so sources must be
// safe to call from outside the simulation loop.
type Server struct {
	src      Source
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewServer(src Source, interval time.Duration) *Server {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Server{
		src:      src,
		interval: interval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ListenAndServe serves the snapshot stream on ws://addr/state. Blocks.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", s.handle)
	log.Infof("inspection stream on ws://%s/state", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade: %s", err)
		return
	}
	defer conn.Close()

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for range t.C {
		if err := conn.WriteJSON(s.src.Snapshot()); err != nil {
			log.Debugf("client gone: %s", err)
			return
		}
	}
}

// V3 packs a vector-ish triple for JSON.
func V3(x, y, z float64) [3]float64 {
	return [3]float64{x, y, z}
}
