package viewers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnJoin(t *testing.T) {
	s := OnJoin(t0)

	assert.Equal(t, KindActive, s.Kind)
	assert.Equal(t, t0, s.LastSeen)
	assert.True(t, s.CountsAt(t0, 5*time.Minute))
}

func TestOnHeartbeat(t *testing.T) {
	window := 5 * time.Minute

	tests := []struct {
		name    string
		state   State
		wantErr error
	}{
		{"active within window", Active(t0.Add(-time.Minute)), nil},
		{"active just inside window", Active(t0.Add(-window + time.Millisecond)), nil},
		{"active at window edge", Active(t0.Add(-window)), ErrSessionExpired},
		{"active past window", Active(t0.Add(-6 * time.Minute)), ErrSessionExpired},
		{"ended recently", Ended(t0.Add(-time.Second)), ErrSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := OnHeartbeat(tt.state, t0, window)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.state, next)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, Active(t0), next)
		})
	}
}

func TestOnLeave(t *testing.T) {
	assert.Equal(t, Ended(t0), OnLeave(Active(t0.Add(-time.Minute)), t0))
	assert.Equal(t, Ended(t0), OnLeave(Ended(t0.Add(-time.Hour)), t0))
}

func TestOnSweepExpire(t *testing.T) {
	cutoff := t0.Add(-5 * time.Minute)

	stale := Active(t0.Add(-6 * time.Minute))
	next, changed := OnSweepExpire(stale, cutoff)
	assert.True(t, changed)
	assert.Equal(t, Ended(stale.LastSeen), next, "expiry must not move lastSeen")

	fresh := Active(t0.Add(-time.Minute))
	next, changed = OnSweepExpire(fresh, cutoff)
	assert.False(t, changed)
	assert.Equal(t, fresh, next)

	edge := Active(cutoff)
	_, changed = OnSweepExpire(edge, cutoff)
	assert.False(t, changed)

	ended := Ended(t0.Add(-time.Hour))
	next, changed = OnSweepExpire(ended, cutoff)
	assert.False(t, changed)
	assert.Equal(t, ended, next)
}

func TestCountsAt(t *testing.T) {
	window := 5 * time.Minute

	assert.True(t, Active(t0.Add(-time.Second)).CountsAt(t0, window))
	assert.False(t, Active(t0.Add(-window-time.Second)).CountsAt(t0, window))
	assert.False(t, Ended(t0).CountsAt(t0, window))
}

func TestStateOf(t *testing.T) {
	s := seedSession("s1", "P1", t0, true)
	assert.Equal(t, Active(t0), StateOf(s))

	s.IsActive = false
	assert.Equal(t, Ended(t0), StateOf(s))
}

func TestState_Patch(t *testing.T) {
	p := Ended(t0).Patch()

	require.NotNil(t, p.LastSeen)
	require.NotNil(t, p.IsActive)
	assert.Equal(t, t0, *p.LastSeen)
	assert.False(t, *p.IsActive)
	assert.False(t, p.IsEmpty())
	assert.True(t, Patch{}.IsEmpty())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "active", KindActive.String())
	assert.Equal(t, "ended", KindEnded.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
