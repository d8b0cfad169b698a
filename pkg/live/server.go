package live

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/recera/dragplot/pkg/chart"
	"github.com/recera/dragplot/pkg/dragplot"
	"github.com/recera/dragplot/pkg/scene"
	"github.com/recera/dragplot/pkg/scheduler"
)

// AppFunc builds a fresh chart and drag binding for one session. The
// scheduler is the session's render loop; the chart must register with
// it so data commits reach the client.
type AppFunc func(sched *scheduler.Scheduler) (*chart.Chart, *dragplot.Binding, error)

// Options configures the live server.
type Options struct {
	// AllowedOrigins whitelists websocket origins. Empty allows
	// same-host requests only.
	AllowedOrigins []string

	Logger *slog.Logger
}

func (o *Options) withDefaults() *Options {
	out := &Options{}
	if o != nil {
		*out = *o
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return out
}

// Server hosts charts over websockets. Each page load gets its own
// session with an isolated chart, so concurrent drags never share
// state.
type Server struct {
	app      AppFunc
	opts     *Options
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewServer creates a live server that builds a session app per
// connection.
func NewServer(app AppFunc, opts *Options) *Server {
	s := &Server{
		app:      app,
		opts:     opts.withDefaults(),
		sessions: make(map[string]*Session),
	}
	s.log = s.opts.Logger
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler returns the HTTP mux: the page at /, websocket upgrades at
// /live/{id}.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/live/", s.handleWebSocket)
	return mux
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.opts.AllowedOrigins) == 0 {
		return strings.Contains(origin, r.Host)
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// handlePage creates a session, renders its chart as SVG and serves
// the page with the bootstrap script pointing at the session socket.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	session, err := s.createSession()
	if err != nil {
		s.log.Error("create session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := writePage(w, session); err != nil {
		s.log.Error("render page", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/live/")
	if id == "" {
		http.Error(w, "session id required", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "error", err)
		return
	}

	s.log.Info("session connected", "session", id)
	session.attach(conn)
	s.removeSession(id)
	s.log.Info("session closed", "session", id)
}

// createSession builds the per-session app. The scheduler's sink
// forwards render patches to the session once it exists; the first
// flush happens before any client is attached, so the sink tolerates
// the nil window.
func (s *Server) createSession() (*Session, error) {
	id, err := randomID()
	if err != nil {
		return nil, err
	}

	var session *Session
	sched := scheduler.New(func(chartID string, patches []scene.Patch) {
		if session != nil && len(patches) > 0 {
			session.sendPatches(patches)
		}
	})

	c, b, err := s.app(sched)
	if err != nil {
		return nil, err
	}

	// Initial render happens server-side; the page carries its output.
	sched.Flush()

	session = newSession(id, c, b, sched, s.log)

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()
	return session, nil
}

func (s *Server) removeSession(id string) {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		session.close()
	}
}

// UpdateSeries hot-swaps the chart data of every live session. The
// swap runs on each session's dispatch goroutine and re-renders there,
// so an in-flight drag keeps its grab-time converter while the scene
// underneath it changes.
func (s *Server) UpdateSeries(series []chart.Series) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		sess := session
		data := cloneSeries(series)
		sess.post(func() {
			sess.chart.SetSeries(data)
		})
	}
}

func cloneSeries(in []chart.Series) []chart.Series {
	out := make([]chart.Series, len(in))
	for i, sr := range in {
		out[i] = sr
		out[i].Points = append([]chart.Point(nil), sr.Points...)
	}
	return out
}

// Broadcast queues a control frame on every connected session. The
// serve command uses it to push RELOAD after a config change.
func (s *Server) Broadcast(msg string) {
	frame := EncodeControl(msg)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		session.enqueue(frame)
	}
}

// SessionCount reports the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func randomID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
