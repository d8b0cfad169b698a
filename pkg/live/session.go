package live

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/recera/dragplot/pkg/chart"
	"github.com/recera/dragplot/pkg/dragplot"
	"github.com/recera/dragplot/pkg/scene"
	"github.com/recera/dragplot/pkg/scheduler"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Session owns one browser connection and its private chart instance.
// Events arrive as binary frames, get dispatched into the scene tree,
// and the resulting patches stream back to the client. All scene
// mutation happens on the session's dispatch goroutine.
type Session struct {
	ID      string
	chart   *chart.Chart
	binding *dragplot.Binding
	sched   *scheduler.Scheduler
	rec     *scene.Recorder
	log     *slog.Logger

	conn      *websocket.Conn
	send      chan []byte
	events    chan *Event
	tasks     chan func()
	closeCh   chan struct{}
	closeOnce sync.Once
}

func newSession(id string, c *chart.Chart, b *dragplot.Binding, sched *scheduler.Scheduler, log *slog.Logger) *Session {
	s := &Session{
		ID:      id,
		chart:   c,
		binding: b,
		sched:   sched,
		rec:     &scene.Recorder{},
		log:     log.With("session", id),
		send:    make(chan []byte, 256),
		events:  make(chan *Event, 64),
		tasks:   make(chan func(), 16),
		closeCh: make(chan struct{}),
	}
	// Direct mutations (marker motion, hover classes) record as they
	// happen; render passes go through Diff and stay unrecorded.
	c.Root().Observe(s.rec)
	return s
}

// attach binds the websocket connection and runs the read loop until
// the connection drops. The writer and dispatcher run as goroutines.
func (s *Session) attach(conn *websocket.Conn) {
	s.conn = conn
	defer s.close()

	go s.writer()
	go s.dispatch()

	s.send <- EncodeControl("HELLO")

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("unexpected close", "error", err)
			}
			return
		}
		if messageType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}
		s.handleFrame(data)
	}
}

func (s *Session) handleFrame(data []byte) {
	switch FrameType(data[0]) {
	case FrameEvent:
		evt, err := DecodeEvent(data)
		if err != nil {
			s.log.Warn("bad event frame", "error", err)
			return
		}
		select {
		case s.events <- evt:
		default:
			s.log.Warn("event buffer full, dropping", "event", evt.Name)
		}

	case FrameControl:
		msg, err := DecodeControl(data)
		if err != nil {
			s.log.Warn("bad control frame", "error", err)
			return
		}
		if msg == "PING" {
			s.enqueue(EncodeControl("PONG"))
		}

	default:
		s.log.Warn("unknown frame type", "type", data[0])
	}
}

// dispatch serializes event handling. Each event runs synchronously
// through the scene tree, then whatever it produced — recorded marker
// patches plus any scheduled re-render — is flushed to the client.
func (s *Session) dispatch() {
	for {
		select {
		case evt := <-s.events:
			s.apply(evt)
		case fn := <-s.tasks:
			fn()
			s.flushOut()
		case <-s.closeCh:
			return
		}
	}
}

// post schedules fn on the dispatch goroutine, where all scene access
// happens. Used for data reloads while the session is live.
func (s *Session) post(fn func()) {
	select {
	case s.tasks <- fn:
	default:
		s.log.Warn("task buffer full, dropping update")
	}
}

func (s *Session) apply(evt *Event) {
	root := s.chart.Root()
	target := root.FindID(evt.NodeID)
	if target == nil {
		// Stale ID from a frame the client has not applied yet, or no ID
		// at all. Hit-test by position instead.
		if t := root.Pick(evt.X, evt.Y); t != nil {
			target = t
		} else {
			target = root
		}
	}

	se := &scene.Event{
		Name:   evt.Name,
		Target: target,
		X:      evt.X,
		Y:      evt.Y,
		Button: int(evt.Button),
	}
	for _, t := range evt.Touches {
		se.Touches = append(se.Touches, scene.Touch{X: t.X, Y: t.Y})
	}
	scene.Dispatch(se)
	s.flushOut()
}

// flushOut ships direct scene mutations (marker motion, hover classes)
// and then any scheduled re-render diff.
func (s *Session) flushOut() {
	if patches := s.rec.Drain(); len(patches) > 0 {
		s.sendPatches(patches)
	}
	s.sched.Flush()
}

// sendPatches encodes and queues a patch batch, dropping it when the
// write buffer is saturated.
func (s *Session) sendPatches(patches []scene.Patch) {
	data, err := EncodePatches(patches)
	if err != nil {
		s.log.Error("encode patches", "error", err)
		return
	}
	s.enqueue(data)
}

func (s *Session) enqueue(data []byte) {
	select {
	case s.send <- data:
	default:
		s.log.Warn("send buffer full, dropping frame", "bytes", len(data))
	}
}

func (s *Session) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				s.log.Debug("write failed", "error", err)
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		if s.conn != nil {
			s.conn.Close()
		}
		s.binding.Close()
		s.chart.Root().Observe(nil)
	})
}
