package core

import "time"

// Status summarizes the watcher state for operators
type Status struct {
	Exchange    string    // name of the tracked exchange
	Subscribers int       // registered recipients
	Known       int       // symbols in the baseline
	Baseline    bool      // whether a baseline has been adopted yet
	LastCheck   time.Time // end of the last completed check, zero before the first one
	LastListing string    // most recently announced symbol
}
