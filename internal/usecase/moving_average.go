package usecase

import (
	"AlgoSensei/internal/domain/models"

	"github.com/shopspring/decimal"
)

// SMA averages the close of the latest period bars. Bars are in chronological order.
// ok is false when the batch holds fewer than period bars.
func SMA(bars []models.HistoricalBar, period int) (avg decimal.Decimal, ok bool) {
	if period < 1 || len(bars) < period {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for _, b := range bars[len(bars)-period:] {
		sum = sum.Add(b.Close)
	}
	return sum.Div(decimal.NewFromInt(int64(period))), true
}

// MovingAverages computes SMA for each period. Periods the batch cannot fill are absent.
func MovingAverages(bars []models.HistoricalBar, periods ...int) map[int]decimal.Decimal {
	out := make(map[int]decimal.Decimal, len(periods))
	for _, p := range periods {
		if avg, ok := SMA(bars, p); ok {
			out[p] = avg
		}
	}
	return out
}
