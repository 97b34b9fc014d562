package viewers

import "time"

type Kind int

const (
	KindActive Kind = iota + 1
	KindEnded
)

func (k Kind) String() string {
	switch k {
	case KindActive:
		return "active"
	case KindEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// lifecycle state of a session: Active(lastSeen) or Ended(lastSeen)
type State struct {
	Kind     Kind
	LastSeen time.Time
}

func Active(lastSeen time.Time) State {
	return State{Kind: KindActive, LastSeen: lastSeen}
}

func Ended(lastSeen time.Time) State {
	return State{Kind: KindEnded, LastSeen: lastSeen}
}

func StateOf(s *ViewerSession) State {
	if s.IsActive {
		return Active(s.LastSeen)
	}

	return Ended(s.LastSeen)
}

func (s State) IsActive() bool {
	return s.Kind == KindActive
}

// whether a session in this state is part of the live count at now
func (s State) CountsAt(now time.Time, window time.Duration) bool {
	return s.IsActive() && s.LastSeen.After(now.Add(-window))
}

// the patch that moves a record from its stored state to s
func (s State) Patch() Patch {
	return Patch{
		LastSeen: ptr(s.LastSeen),
		IsActive: ptr(s.IsActive()),
	}
}

func (s State) applyTo(v *ViewerSession) {
	v.LastSeen = s.LastSeen
	v.IsActive = s.IsActive()
}

func OnJoin(now time.Time) State {
	return Active(now)
}

// an ended session, or one silent past the window, is never resumed
func OnHeartbeat(s State, now time.Time, window time.Duration) (State, error) {
	if !s.CountsAt(now, window) {
		return s, ErrSessionExpired
	}

	return Active(now), nil
}

// leave ends the session from any state and records the end time
func OnLeave(_ State, now time.Time) State {
	return Ended(now)
}

// expiry keeps lastSeen; only active sessions older than cutoff change
func OnSweepExpire(s State, cutoff time.Time) (State, bool) {
	if !s.IsActive() || !s.LastSeen.Before(cutoff) {
		return s, false
	}

	return Ended(s.LastSeen), true
}
