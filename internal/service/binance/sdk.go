package binance

import (
	"context"
	"errors"
	"net/http"

	"AlgoSensei/internal/domain/errs"
	"AlgoSensei/internal/domain/models"

	"github.com/adshao/go-binance/v2"
)

var errEmptyTicker = errors.New("empty ticker response")

// SDKSource implements repository.MarketSource on top of the go-binance client.
// Only public market-data endpoints are used, so no API key is needed.
type SDKSource struct {
	client *binance.Client
}

// NewSDKSource creates a source. An empty baseURL keeps the SDK default.
func NewSDKSource(baseURL string, hc *http.Client) *SDKSource {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}
	if hc != nil {
		client.HTTPClient = hc
	}
	return &SDKSource{client: client}
}

func (s *SDKSource) Ticker(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	stats, err := s.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, errs.NewFetchError(errs.NetworkError, symbol, err)
	}
	if len(stats) == 0 || stats[0] == nil {
		return nil, errs.NewFetchError(errs.MalformedResponse, symbol, errEmptyTicker)
	}

	st := stats[0]
	return snapshotFromFields(symbol, &st.Symbol, &st.LastPrice, &st.Volume, &st.PriceChangePercent)
}

func (s *SDKSource) Klines(ctx context.Context, symbol, interval string, limit int) ([]models.HistoricalBar, error) {
	klines, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, errs.NewFetchError(errs.NetworkError, symbol, err)
	}

	bars := make([]models.HistoricalBar, 0, len(klines))
	for _, k := range klines {
		bar, err := barFromFields(k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume, k.CloseTime)
		if err != nil {
			return nil, errs.NewFetchError(errs.MalformedResponse, symbol, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
