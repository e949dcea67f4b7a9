package display

import "time"

// DefaultHistorySize is how many received instructions a View keeps.
const DefaultHistorySize = 5

// Received is one instruction as it arrived, before interpretation.
type Received struct {
	Command    string    `json:"command"`
	Parameters string    `json:"parameters"`
	RecordID   string    `json:"recordId"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// prependHistory returns a new slice with r first, capped at size.
func prependHistory(h []Received, r Received, size int) []Received {
	n := len(h) + 1
	if n > size {
		n = size
	}
	out := make([]Received, n)
	out[0] = r
	copy(out[1:], h)
	return out
}
