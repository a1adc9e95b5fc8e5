package hawkbit

import "time"

// Publication records the outcome of one publishing run.
type Publication struct {
	// Timestamp is when the run ended.
	Timestamp time.Time
	// Actor is the user@host that ran the publisher.
	Actor   string
	Vendor  string
	Name    string
	Version string
	// Cycles lists every cycle that was attempted, in order.
	Cycles []PublishedCycle
	// Error is empty when the run succeeded.
	Error string
}

// PublishedCycle is what one cycle left on the server.
type PublishedCycle struct {
	Version           string
	RolloutName       string
	ModuleID          int64
	DistributionSetID int64
	RolloutID         int64
	// Stage is the last stage the cycle reached.
	Stage    string
	Progress RolloutProgress
}

// Succeeded reports whether the run finished without error.
func (p *Publication) Succeeded() bool {
	return p.Error == ""
}
