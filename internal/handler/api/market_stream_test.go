package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"AlgoSensei/internal/domain/models"
	mid "AlgoSensei/internal/middleware"
	"AlgoSensei/internal/usecase"
	"AlgoSensei/pkg/metrics"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketStream_PushesCurrentAndNewerSets(t *testing.T) {
	fanout := mid.NewSnapshotFanout(metrics.Nop{})
	board := usecase.NewSnapshotBoard(fanout, metrics.Nop{}, nil)
	poller := usecase.NewMarketPoller(&stubSource{}, metrics.Nop{}, nil)
	feed := usecase.NewMarketFeed(poller, board, []string{"BTCUSDT"}, time.Minute)

	set := func(seq uint64, price int64) models.SnapshotSet {
		return models.SnapshotSet{Sequence: seq, Snapshots: []models.MarketSnapshot{
			{Symbol: "BTCUSDT", Price: decimal.NewFromInt(price), Volume24h: decimal.NewFromInt(1)},
		}}
	}
	board.Apply(set(1, 100))

	e := echo.New()
	NewMarketHandler(nil, feed, "1d", 100, NewMarketStream(nil, feed, nil)).RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/market", nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg streamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "snapshots", msg.Type)
	require.NotNil(t, msg.Data)
	assert.Equal(t, uint64(1), msg.Data.Sequence)

	require.Eventually(t, func() bool { return fanout.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	board.Apply(set(2, 150))

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, uint64(2), msg.Data.Sequence)
	assert.Equal(t, "150", msg.Data.Snapshots[0].Price.String())

	fanout.Stop()
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:3000"})

	req := httptest.NewRequest("GET", "/ws/market", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))
}
