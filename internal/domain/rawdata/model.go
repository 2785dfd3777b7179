package rawdata

import "time"

// Payload is an upstream response kept for diagnostic display.
type Payload struct {
	Source    string
	Endpoint  string
	Body      string
	Attempts  int
	Error     string
	FetchedAt time.Time
}
