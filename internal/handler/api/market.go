package api

import (
	"strings"

	"AlgoSensei/internal/domain/models"
	"AlgoSensei/internal/usecase"
	xhttp "AlgoSensei/pkg/http"
	applogger "AlgoSensei/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const (
	smaShortPeriod = 7
	smaLongPeriod  = 25
)

// historyResponse is the bar list with the moving averages of its closes.
// An average the batch is too short for is null.
type historyResponse struct {
	xhttp.ListDataResponse
	SMA7  *decimal.Decimal `json:"sma7"`
	SMA25 *decimal.Decimal `json:"sma25"`
}

// MarketHandler serves the snapshot board, manual refresh, history and the widget stream.
type MarketHandler struct {
	logger          *applogger.Logger
	feed            *usecase.MarketFeed
	historyInterval string
	historyLimit    int
	stream          *MarketStream
}

func NewMarketHandler(logger *applogger.Logger, feed *usecase.MarketFeed, historyInterval string, historyLimit int, stream *MarketStream) *MarketHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &MarketHandler{
		logger:          logger,
		feed:            feed,
		historyInterval: historyInterval,
		historyLimit:    historyLimit,
		stream:          stream,
	}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/market")
	g.GET("/snapshots", h.Snapshots)
	g.POST("/refresh", h.Refresh)
	g.GET("/history", h.History)

	if h.stream != nil {
		e.GET("/ws/market", h.stream.Serve)
	}
}

type snapshotsResponse struct {
	Symbols []string            `json:"symbols"`
	Ready   bool                `json:"ready"`
	Set     *models.SnapshotSet `json:"set,omitempty"`
}

func (h *MarketHandler) snapshots() snapshotsResponse {
	resp := snapshotsResponse{Symbols: h.feed.Symbols()}
	if set, ok := h.feed.Latest(); ok {
		resp.Ready = true
		resp.Set = &set
	}
	return resp
}

// Snapshots returns the last good set; before the first successful fetch ready is false.
func (h *MarketHandler) Snapshots(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, h.snapshots())
}

// Refresh triggers one out-of-band fetch. On failure the previous set stays on the board.
func (h *MarketHandler) Refresh(c echo.Context) error {
	if err := h.feed.Refresh(c.Request().Context()); err != nil {
		h.logger.Warn("manual refresh failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, marketAppError(err))
	}
	return xhttp.SuccessResponse(c, h.snapshots())
}

func (h *MarketHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{Interval: h.historyInterval, Limit: h.historyLimit}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := strings.ToUpper(req.Symbol)

	bars, err := h.feed.History(c.Request().Context(), symbol, req.Interval, req.Limit)
	if err != nil {
		h.logger.Warn("history fetch failed",
			applogger.String("symbol", symbol),
			applogger.String("interval", req.Interval),
			applogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, marketAppError(err))
	}

	resp := &historyResponse{ListDataResponse: xhttp.ListDataResponse{Rows: bars, Total: int64(len(bars))}}
	avgs := usecase.MovingAverages(bars, smaShortPeriod, smaLongPeriod)
	if v, ok := avgs[smaShortPeriod]; ok {
		resp.SMA7 = &v
	}
	if v, ok := avgs[smaLongPeriod]; ok {
		resp.SMA25 = &v
	}
	return xhttp.SuccessResponse(c, resp)
}
