package api

import (
	"net/http"
	"time"

	"AlgoSensei/internal/domain/models"
	"AlgoSensei/internal/usecase"
	applogger "AlgoSensei/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPongWait     = 90 * time.Second
	streamPingEvery    = 45 * time.Second
)

type streamMessage struct {
	Type string              `json:"type"`
	Data *models.SnapshotSet `json:"data,omitempty"`
}

// MarketStream pushes every new snapshot set to a browser widget over a WebSocket.
type MarketStream struct {
	logger   *applogger.Logger
	feed     *usecase.MarketFeed
	upgrader websocket.Upgrader
}

// NewMarketStream creates the stream endpoint. allowedOrigins empty accepts any origin.
func NewMarketStream(logger *applogger.Logger, feed *usecase.MarketFeed, allowedOrigins []string) *MarketStream {
	if logger == nil {
		logger = applogger.Nop()
	}
	s := &MarketStream{logger: logger, feed: feed}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return s
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Serve upgrades the request, sends the current set and then every newer one.
func (s *MarketStream) Serve(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", applogger.Error(err))
		return nil
	}
	defer conn.Close()

	sub := s.feed.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go s.readLoop(conn, done)

	if set, ok := s.feed.Latest(); ok {
		if err := s.write(conn, streamMessage{Type: "snapshots", Data: &set}); err != nil {
			return nil
		}
	}

	ping := time.NewTicker(streamPingEvery)
	defer ping.Stop()

	for {
		select {
		case set, ok := <-sub.C:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(streamWriteTimeout))
				return nil
			}
			if err := s.write(conn, streamMessage{Type: "snapshots", Data: &set}); err != nil {
				s.logger.Debug("websocket write failed", applogger.Error(err))
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteTimeout)); err != nil {
				return nil
			}
		case <-done:
			return nil
		case <-c.Request().Context().Done():
			return nil
		}
	}
}

func (s *MarketStream) write(conn *websocket.Conn, msg streamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(msg)
}

// readLoop drains client frames so pongs and close frames are processed.
func (s *MarketStream) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
