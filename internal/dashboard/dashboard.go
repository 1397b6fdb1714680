// Package dashboard serves the optional live telemetry surface named in
// SPEC_FULL.md §6: an HTML page, a websocket push of per-worker snapshots,
// and a Prometheus exposition, all backed by an *telemetry.Registry.
//
// The websocket half of this package is adapted directly from the
// teacher's server.serveWebsocket/publishEleUpdates: same ping/pong
// constants, same read-pump-drives-control-frames structure, generalized
// from a single-client grid-view push to the telemetry registry's
// snapshot slice.
package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"annealer/internal/telemetry"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	writeWait        = 1 * time.Second
	maxMessageSize   = 8192
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	closeGracePeriod = 10 * time.Second
	pushInterval     = 2 * time.Second
	metricsInterval  = 2 * time.Second
)

var upgrader = websocket.Upgrader{}

// Server serves the dashboard's three endpoints: "/" (HTML page), "/ws"
// (live JSON snapshot push) and "/metrics" (Prometheus exposition).
type Server struct {
	addr     string
	registry *telemetry.Registry
	bestCost *prometheus.GaugeVec
}

// NewServer returns a dashboard bound to addr, reading from registry.
func NewServer(addr string, registry *telemetry.Registry) *Server {
	bestCost := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "annealer_worker_best_cost",
		Help: "Best cost observed by each worker so far.",
	}, []string{"worker"})
	prometheus.MustRegister(bestCost)

	return &Server{addr: addr, registry: registry, bestCost: bestCost}
}

// Serve blocks until ctx is cancelled, then shuts the HTTP server down
// within closeGracePeriod.
func (s *Server) Serve(ctx context.Context) error {
	router := mux.NewRouter()
	router.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.serveWebsocket)
	router.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{Addr: s.addr, Handler: router}

	go s.syncMetrics(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), closeGracePeriod)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: serve: %w", err)
	}
	return nil
}

// syncMetrics periodically copies the registry's snapshots into the
// Prometheus gauge vector, independent of whether any websocket client is
// connected.
func (s *Server) syncMetrics(ctx context.Context) {
	done := ctx.Done()
	for range channerics.NewTicker(done, metricsInterval) {
		for _, snap := range s.registry.Snapshots() {
			s.bestCost.WithLabelValues(snap.Worker).Set(snap.BestCost)
		}
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>annealer</title></head>
<body>
<h1>worker status</h1>
<table id="workers" border="1" cellpadding="4">
<tr><th>worker</th><th>round</th><th>best cost</th></tr>
{{range .}}<tr><td>{{.Worker}}</td><td>{{.Round}}</td><td>{{printf "%.4f" .BestCost}}</td></tr>{{end}}
</table>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => {
  const rows = JSON.parse(ev.data);
  const table = document.getElementById("workers");
  table.innerHTML = "<tr><th>worker</th><th>round</th><th>best cost</th></tr>";
  for (const r of rows) {
    const tr = document.createElement("tr");
    tr.innerHTML = "<td>" + r.worker + "</td><td>" + r.round + "</td><td>" + r.best_cost.toFixed(4) + "</td>";
    table.appendChild(tr);
  }
};
</script>
</body>
</html>
`))

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if err := indexTemplate.Execute(w, s.registry.Snapshots()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// serveWebsocket upgrades the connection and pushes telemetry snapshots to
// the client every pushInterval, with the same ping/pong keepalive shape
// the teacher's publishEleUpdates uses.
func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("dashboard: upgrade: %v", err)
		return
	}
	defer closeWebsocket(ws)

	s.publishSnapshots(r.Context(), ws)
}

func (s *Server) publishSnapshots(ctx context.Context, ws *websocket.Conn) {
	pubCtx, cancelPub := context.WithCancel(ctx)
	defer cancelPub()

	ticker := channerics.NewTicker(pubCtx.Done(), pushInterval)
	pinger := channerics.NewTicker(pubCtx.Done(), pingPeriod)
	lastPong := time.Now()

	pong := make(chan struct{})
	defer close(pong)
	ws.SetPongHandler(func(string) error {
		pong <- struct{}{}
		return nil
	})

	go func() {
		for {
			select {
			case <-pubCtx.Done():
				return
			default:
				if _, _, err := ws.ReadMessage(); err != nil {
					cancelPub()
					return
				}
			}
		}
	}()

	for {
		select {
		case <-pubCtx.Done():
			return
		case <-pinger:
			if time.Since(lastPong) > pingPeriod*2 {
				return
			}
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-pong:
			lastPong = time.Now()
		case <-ticker:
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := ws.WriteJSON(s.registry.Snapshots()); err != nil {
				return
			}
		}
	}
}

func closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	ws.Close()
}
