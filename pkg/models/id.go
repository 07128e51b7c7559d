package models

import (
	"math/rand"
	"strconv"
	"time"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID builds a time-ordered identifier for incidents and webhooks:
// <unix-millis>-<7 random base36 chars>.
func NewID(now time.Time) string {
	suffix := make([]byte, 7)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}

	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + string(suffix)
}
