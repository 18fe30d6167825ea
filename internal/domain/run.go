package domain

import "time"

// Catalog is the outcome of one aggregation pass
type Catalog struct {
	Aggregate        *Aggregate
	Categories       int      // Leaf categories discovered
	FailedCategories int      // Categories whose product fetch failed
	DuplicateKeys    []string // Keys emitted by more than one leaf category
}

// RunSummary describes a finished run
type RunSummary struct {
	RunID            string    `json:"run_id"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	Categories       int       `json:"categories"`
	FailedCategories int       `json:"failed_categories"`
	Products         int       `json:"products"`
	DuplicateKeys    []string  `json:"duplicate_keys,omitempty"`
}

func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
