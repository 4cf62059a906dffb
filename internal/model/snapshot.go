package model

import "time"

// RefreshMetadata describes when the dividend history was last refreshed and from where.
type RefreshMetadata struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Source      string    `json:"source"`
}

// Snapshot is the offline export of already-computed state.
type Snapshot struct {
	ID            string          `json:"id"`
	ExportedAt    time.Time       `json:"exportedAt"`
	ReferenceDate time.Time       `json:"referenceDate"`
	LastUpdated   time.Time       `json:"lastUpdated"`
	Source        string          `json:"source"`
	Holdings      []Holding       `json:"holdings"`
	Events        []DividendEvent `json:"events"`
	Summary       Summary         `json:"summary"`
}

// RefreshFailure is a ticker whose history could not be refreshed.
type RefreshFailure struct {
	Ticker string `json:"ticker"`
	Error  string `json:"error"`
}

// RefreshResult reports the outcome of a history refresh.
type RefreshResult struct {
	Refreshed   []string         `json:"refreshed"`
	Failed      []RefreshFailure `json:"failed"`
	LastUpdated time.Time        `json:"lastUpdated"`
}
