package api

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/case-dashboard/internal/dashboard"
	"github.com/case-dashboard/internal/domain"
	"github.com/case-dashboard/internal/middleware"
)

// Stream message types
const (
	MessageCharts = "charts"
	MessageError  = "error"
)

const (
	streamReadLimit  = 4096
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// SelectionFrame is sent by the client; a null or missing selection means none
type SelectionFrame struct {
	Selection *int `json:"selection"`
}

// StreamMessage is sent to the client
type StreamMessage struct {
	Type      string                     `json:"type"`
	Ticket    dashboard.Ticket           `json:"ticket"`
	Selection *int                       `json:"selection,omitempty"`
	Result    *dashboard.SelectionResult `json:"result,omitempty"`
	Charts    []Chart                    `json:"charts,omitempty"`
	Error     *domain.DashboardError     `json:"error,omitempty"`
}

// streamConn serializes writes to one websocket
type streamConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (sc *streamConn) writeJSON(v any) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return sc.conn.WriteJSON(v)
}

func (sc *streamConn) ping() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait))
}

// handleStream upgrades to a websocket. Each selection frame is computed
// concurrently; the per-connection sequencer drops any result overtaken by a
// newer selection.
func (s *Server) handleStream(c *gin.Context) {
	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	correlationID := c.GetString(middleware.CorrelationIDKey)
	log := s.log.WithFields(logrus.Fields{
		"correlation_id": correlationID,
		"session_id":     s.session.ID(),
	})
	log.Info("Selection stream opened")

	conn := &streamConn{conn: ws}
	seq := &dashboard.Sequencer{}
	var wg sync.WaitGroup
	done := make(chan struct{})

	defer func() {
		close(done)
		wg.Wait()
		ws.Close()
		log.Info("Selection stream closed")
	}()

	ws.SetReadLimit(streamReadLimit)
	ws.SetReadDeadline(time.Now().Add(streamPongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(streamPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.ping(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Initial state for the default selection
	s.computeAndDeliver(conn, seq, seq.Next(), nil, log)

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("Selection stream read failed")
			}
			return
		}
		ws.SetReadDeadline(time.Now().Add(streamPongWait))

		var frame SelectionFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			conn.writeJSON(StreamMessage{
				Type:  MessageError,
				Error: domain.NewDashboardError(domain.ErrInvalidInput, "Malformed selection frame", err.Error(), correlationID),
			})
			continue
		}

		ticket := seq.Next()
		wg.Add(1)
		go func(sel *int) {
			defer wg.Done()
			s.computeAndDeliver(conn, seq, ticket, sel, log)
		}(frame.Selection)
	}
}

func (s *Server) computeAndDeliver(conn *streamConn, seq *dashboard.Sequencer, ticket dashboard.Ticket, sel *int, log *logrus.Entry) {
	if ticket < seq.Latest() {
		log.WithField("ticket", ticket).Debug("Skipped selection overtaken before computing")
		return
	}

	result := s.session.HandleSelectionChanged(domain.SelectionFromPtr(sel))
	charts, err := s.renderAll(s.session.SelectionCharts(result))

	msg := StreamMessage{Type: MessageCharts, Ticket: ticket, Selection: sel}
	if err != nil {
		msg.Type = MessageError
		msg.Error = domain.NewDashboardError(domain.ErrInternalServer, "Failed to render charts", err.Error(), "")
	} else {
		msg.Result = &result
		msg.Charts = charts
	}

	delivered := seq.Deliver(ticket, func() {
		if err := conn.writeJSON(msg); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			log.WithError(err).Debug("Selection stream write failed")
		}
	})
	if !delivered {
		log.WithField("ticket", ticket).Debug("Dropped result overtaken by a newer selection")
	}
}
