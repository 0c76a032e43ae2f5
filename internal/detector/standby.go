package detector

// Activity thresholds as linear 16-bit sample magnitudes. The original
// float thresholds (0.05 and 0.1 of full scale) scaled to int16 range.
const (
	SilenceThreshold  = 0.05 * 32767
	ActivityThreshold = 0.1 * 32767

	// ActivityWindows is the number of consecutive active windows
	// required to leave standby.
	ActivityWindows = 2

	// StandbyWindows is the number of consecutive silent windows
	// required to enter standby.
	StandbyWindows = 5
)

// Standby tracks measured audio levels across capture windows and decides
// whether recognition should run at all. While engaged, the daemon skips
// recognition entirely, which keeps the service quota untouched between
// record sides.
type Standby struct {
	engaged  bool
	silence  int
	activity int
}

// Update feeds one window's level into the state machine and returns
// true when the standby state flipped.
func (s *Standby) Update(level float64) bool {
	switch {
	case level < SilenceThreshold:
		s.silence++
		s.activity = 0
		if s.silence >= StandbyWindows && !s.engaged {
			s.engaged = true
			return true
		}
	case level > ActivityThreshold:
		s.activity++
		s.silence = 0
		if s.activity >= ActivityWindows && s.engaged {
			s.engaged = false
			return true
		}
	}
	// Levels between the thresholds leave both counters unchanged
	return false
}

// Engaged reports whether standby is active.
func (s *Standby) Engaged() bool {
	return s.engaged
}
