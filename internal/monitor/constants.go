// Package monitor implements the sampling-decision loop
package monitor

import "time"

// Loop timing constants
const (
	// Sleep slice while paused; bounds pause/resume reaction latency
	PausePollInterval = 100 * time.Millisecond

	// Backoff after a failed iteration before the next attempt
	FaultBackoff = 100 * time.Millisecond

	// Window over which the sampling rate is estimated
	StatsWindow = time.Second

	// How long Stop waits for the loop to observe the cleared flag
	StopTimeout = 2 * time.Second
)
