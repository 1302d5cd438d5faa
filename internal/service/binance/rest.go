package binance

import (
	"context"
	"strconv"

	"AlgoSensei/internal/domain/errs"
	"AlgoSensei/internal/domain/models"
	xhttp "AlgoSensei/pkg/http"
)

const (
	tickerPath = "/api/v3/ticker/24hr"
	klinesPath = "/api/v3/klines"
)

// RESTSource implements repository.MarketSource with plain HTTP calls to the public endpoints.
type RESTSource struct {
	http *xhttp.Client
}

// NewRESTSource creates a source; client must carry the exchange base URL.
func NewRESTSource(client *xhttp.Client) *RESTSource {
	return &RESTSource{http: client}
}

func (s *RESTSource) Ticker(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	var body []byte
	err := s.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         tickerPath,
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &body)
	if err != nil {
		return nil, networkError(symbol, err)
	}
	return parseTicker(symbol, body)
}

func (s *RESTSource) Klines(ctx context.Context, symbol, interval string, limit int) ([]models.HistoricalBar, error) {
	var body []byte
	err := s.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    klinesPath,
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {interval},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &body)
	if err != nil {
		return nil, networkError(symbol, err)
	}
	return parseKlines(symbol, body)
}

// networkError wraps transport and status failures; the cause stays reachable so
// errors.Is(err, context.Canceled) still works.
func networkError(symbol string, err error) error {
	return errs.NewFetchError(errs.NetworkError, symbol, err)
}
