package util

import "time"

// klineIntervals lists the candle intervals the exchange accepts.
var klineIntervals = map[string]struct{}{
	"1m": {}, "3m": {}, "5m": {}, "15m": {}, "30m": {},
	"1h": {}, "2h": {}, "4h": {}, "6h": {}, "8h": {}, "12h": {},
	"1d": {}, "3d": {}, "1w": {}, "1M": {},
}

// ValidInterval reports whether s is a supported candle interval (1m..1M).
func ValidInterval(s string) bool {
	_, ok := klineIntervals[s]
	return ok
}

// UnixMilli converts exchange millisecond timestamps to UTC time.
func UnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
