package search

import "time"

// Monitor provides hooks to observe query handling.
// Implement this interface to track routing decisions, cache churn, and
// fallbacks during search.
type Monitor interface {
	QueryStarted(kind QueryKind, raw string)
	QueryCompleted(kind QueryKind, results int, elapsed time.Duration)
	CacheRefreshed(size int)
	Fallback(reason string)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) QueryStarted(_ QueryKind, _ string) {}

func (n *noopMonitor) QueryCompleted(_ QueryKind, _ int, _ time.Duration) {}

func (n *noopMonitor) CacheRefreshed(_ int) {}

func (n *noopMonitor) Fallback(_ string) {}
