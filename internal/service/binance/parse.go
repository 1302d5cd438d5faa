package binance

import (
	"encoding/json"
	"fmt"

	"AlgoSensei/internal/domain/errs"
	"AlgoSensei/internal/domain/models"
	"AlgoSensei/pkg/util"

	"github.com/shopspring/decimal"
)

// tickerPayload mirrors the fields of GET /api/v3/ticker/24hr the snapshot needs.
// Pointers distinguish a missing field from an empty one.
type tickerPayload struct {
	Symbol             *string `json:"symbol"`
	LastPrice          *string `json:"lastPrice"`
	Volume             *string `json:"volume"`
	PriceChangePercent *string `json:"priceChangePercent"`
}

func parseTicker(requested string, body []byte) (*models.MarketSnapshot, error) {
	var p tickerPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, errs.NewFetchError(errs.MalformedResponse, requested, fmt.Errorf("decode ticker: %w", err))
	}
	return snapshotFromFields(requested, p.Symbol, p.LastPrice, p.Volume, p.PriceChangePercent)
}

func snapshotFromFields(requested string, symbol, last, volume, change *string) (*models.MarketSnapshot, error) {
	if symbol == nil || *symbol == "" {
		return nil, errs.NewFetchError(errs.MalformedResponse, requested, fmt.Errorf("missing symbol"))
	}

	price, err := requireDecimal("lastPrice", last)
	if err != nil {
		return nil, errs.NewFetchError(errs.MalformedResponse, requested, err)
	}
	vol, err := requireDecimal("volume", volume)
	if err != nil {
		return nil, errs.NewFetchError(errs.MalformedResponse, requested, err)
	}
	pct, err := requireDecimal("priceChangePercent", change)
	if err != nil {
		return nil, errs.NewFetchError(errs.MalformedResponse, requested, err)
	}

	return &models.MarketSnapshot{
		Symbol:           *symbol,
		Price:            price,
		Volume24h:        vol,
		ChangePercent24h: pct,
	}, nil
}

func requireDecimal(field string, v *string) (decimal.Decimal, error) {
	if v == nil || *v == "" {
		return decimal.Zero, fmt.Errorf("missing %s", field)
	}
	d, err := decimal.NewFromString(*v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q is not a decimal", field, *v)
	}
	return d, nil
}

// parseKlines decodes the 12-field kline tuples; only the first 7 are kept.
func parseKlines(symbol string, body []byte) ([]models.HistoricalBar, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, errs.NewFetchError(errs.MalformedResponse, symbol, fmt.Errorf("decode klines: %w", err))
	}

	bars := make([]models.HistoricalBar, 0, len(rows))
	for i, row := range rows {
		if len(row) < 7 {
			return nil, errs.NewFetchError(errs.MalformedResponse, symbol, fmt.Errorf("kline %d has %d fields", i, len(row)))
		}

		var openTime, closeTime int64
		var o, h, l, c, v string
		targets := []interface{}{&openTime, &o, &h, &l, &c, &v, &closeTime}
		for j, t := range targets {
			if err := json.Unmarshal(row[j], t); err != nil {
				return nil, errs.NewFetchError(errs.MalformedResponse, symbol, fmt.Errorf("kline %d field %d: %w", i, j, err))
			}
		}

		bar, err := barFromFields(openTime, o, h, l, c, v, closeTime)
		if err != nil {
			return nil, errs.NewFetchError(errs.MalformedResponse, symbol, fmt.Errorf("kline %d: %w", i, err))
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func barFromFields(openTime int64, o, h, l, c, v string, closeTime int64) (models.HistoricalBar, error) {
	bar := models.HistoricalBar{
		OpenTime:  util.UnixMilli(openTime),
		CloseTime: util.UnixMilli(closeTime),
	}

	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"open", o, &bar.Open},
		{"high", h, &bar.High},
		{"low", l, &bar.Low},
		{"close", c, &bar.Close},
		{"volume", v, &bar.Volume},
	}
	for _, f := range fields {
		d, err := requireDecimal(f.name, &f.raw)
		if err != nil {
			return models.HistoricalBar{}, err
		}
		*f.dst = d
	}
	return bar, nil
}
