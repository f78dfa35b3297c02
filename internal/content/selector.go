// Package content picks reminder copy deterministically from phrase pools.
//
// Every choice is a pure function of a seed string, so two devices (or two
// polls of the same device) that build the same seed show the same title.
package content

import (
	"time"
	"unicode/utf16"
)

// Weighted is one entry of a weighted-choice table.
type Weighted struct {
	ID     string `json:"id"`
	Weight int    `json:"weight"`
}

// Hash is a 32-bit polynomial rolling hash over the UTF-16 code units of
// seed (h = h*31 + c, wrapped to int32), returned as its absolute value.
func Hash(seed string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(seed)) {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// Pick returns the pool element selected by seed. An empty pool returns the
// zero value and false.
func Pick[T any](pool []T, seed string) (T, bool) {
	var zero T
	if len(pool) == 0 {
		return zero, false
	}
	return pool[Hash(seed)%int64(len(pool))], true
}

// PickWeighted walks the cumulative weights with roll = Hash(seed) % total.
// Non-positive weights never win.
func PickWeighted(choices []Weighted, seed string) (string, bool) {
	var total int64
	for _, c := range choices {
		if c.Weight > 0 {
			total += int64(c.Weight)
		}
	}
	if total == 0 {
		return "", false
	}

	roll := Hash(seed) % total
	for _, c := range choices {
		if c.Weight <= 0 {
			continue
		}
		roll -= int64(c.Weight)
		if roll < 0 {
			return c.ID, true
		}
	}
	return "", false
}

// Bucket is the index of the interval-sized slice of the day containing now.
func Bucket(now time.Time, intervalMinutes int) int {
	if intervalMinutes < 1 {
		intervalMinutes = 1
	}
	return MinuteOfDay(now) / intervalMinutes
}

// MinuteOfDay returns minutes since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
