package timer

import "time"

// TickSource is the periodic driver of an Engine. Start and Stop must be idempotent.
type TickSource interface {
	Start()
	Stop()
}

// IntervalSource wraps a time.Ticker for a select loop. It is not safe for concurrent use;
// the goroutine that owns the Engine also owns the source.
type IntervalSource struct {
	interval time.Duration
	ticker   *time.Ticker
}

// NewIntervalSource returns a stopped source firing every interval once started.
func NewIntervalSource(interval time.Duration) *IntervalSource {
	return &IntervalSource{interval: interval}
}

// Start implements TickSource.
func (s *IntervalSource) Start() {
	if s.ticker != nil {
		return
	}
	s.ticker = time.NewTicker(s.interval)
}

// Stop implements TickSource.
func (s *IntervalSource) Stop() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	s.ticker = nil
}

// C returns the tick channel, or nil while stopped so that a select blocks on it forever.
func (s *IntervalSource) C() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.C
}
