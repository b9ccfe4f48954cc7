package models

import "time"

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// MillisOr returns *ts when the client supplied a timestamp, otherwise
// the given fallback.
func MillisOr(ts *int64, fallback int64) int64 {
	if ts != nil {
		return *ts
	}
	return fallback
}
