package pool

// Metrics receives pipeline counters. Implementations must be cheap; they are
// called once per scanned profile.
type Metrics interface {
	ProfilesScanned(n int)
	Excluded(reason string)
	MemberAccepted()
	MemberDropped()
	PoolsWritten(n int)
}

type NopMetrics struct{}

func (NopMetrics) ProfilesScanned(int) {}
func (NopMetrics) Excluded(string)     {}
func (NopMetrics) MemberAccepted()     {}
func (NopMetrics) MemberDropped()      {}
func (NopMetrics) PoolsWritten(int)    {}
