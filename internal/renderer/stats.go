package renderer

import (
	"time"

	"github.com/loov/hrtime"
)

// frameStats counts presented frames and reports rate and mean frame time
// about once per second.
type frameStats struct {
	now    func() time.Duration
	start  time.Duration
	frames int
}

func newFrameStats() *frameStats {
	return newFrameStatsWithClock(hrtime.Now)
}

func newFrameStatsWithClock(now func() time.Duration) *frameStats {
	return &frameStats{now: now, start: now()}
}

// frame records one frame. ok is set when a second or more has passed since
// the last report.
func (s *frameStats) frame() (fps, ms float64, ok bool) {
	now := s.now()
	s.frames++

	elapsed := now - s.start
	if elapsed < time.Second {
		return 0, 0, false
	}

	fps = float64(s.frames) / elapsed.Seconds()
	ms = elapsed.Seconds() * 1000 / float64(s.frames)

	s.start = now
	s.frames = 0
	return fps, ms, true
}
