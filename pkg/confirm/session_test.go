package confirm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type harness struct {
	sched    *ManualScheduler
	session  *Session
	outcomes []Outcome
}

// startSession opens a session on a manual clock. Timer posts are fed back
// into the session synchronously, the way the chat loop does.
func startSession(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		sched:   NewManualScheduler(),
		session: NewSession("planning", opts...),
	}
	h.session.Start(h.sched, func(msg any) {
		if o, ok := h.session.Receive(msg); ok {
			h.outcomes = append(h.outcomes, o)
		}
	})
	return h
}

func TestNewSession(t *testing.T) {
	h := startSession(t)

	assert.Equal(t, "planning", h.session.Target())
	assert.Equal(t, ButtonKeep, h.session.Focus())
	assert.Equal(t, 30, h.session.Remaining())
	assert.Equal(t, 30, h.session.Total())
	assert.NotEmpty(t, h.session.ID())
	assert.False(t, h.session.Resolved())
	assert.Equal(t, 2, h.sched.Active())

	other := NewSession("planning")
	assert.NotEqual(t, h.session.ID(), other.ID())
}

func TestCountdown(t *testing.T) {
	h := startSession(t)

	h.sched.Advance(5 * time.Second)
	assert.Equal(t, 25, h.session.Remaining())
	assert.False(t, h.session.Resolved())
	assert.Empty(t, h.outcomes)

	h.sched.Advance(500 * time.Millisecond)
	assert.Equal(t, 25, h.session.Remaining())
}

func TestDeadlineKeepsSkill(t *testing.T) {
	h := startSession(t)

	h.sched.Advance(29 * time.Second)
	assert.Empty(t, h.outcomes)

	h.sched.Advance(time.Second)
	require.Len(t, h.outcomes, 1)
	assert.Equal(t, Outcome{Remove: false, TimedOut: true}, h.outcomes[0])
	assert.True(t, h.session.Resolved())
	assert.Equal(t, 0, h.sched.Active())

	h.sched.Advance(time.Minute)
	assert.Len(t, h.outcomes, 1)
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name   string
		inputs []Input
		want   Outcome
	}{
		{name: "cancel keeps", inputs: []Input{InputCancel}, want: Outcome{Remove: false}},
		{name: "no keeps", inputs: []Input{InputNo}, want: Outcome{Remove: false}},
		{name: "yes removes", inputs: []Input{InputYes}, want: Outcome{Remove: true}},
		{name: "confirm on default focus keeps", inputs: []Input{InputConfirm}, want: Outcome{Remove: false}},
		{name: "toggle then confirm removes", inputs: []Input{InputToggle, InputConfirm}, want: Outcome{Remove: true}},
		{name: "double toggle then confirm keeps", inputs: []Input{InputToggle, InputToggle, InputConfirm}, want: Outcome{Remove: false}},
		{name: "yes bypasses focus", inputs: []Input{InputToggle, InputToggle, InputYes}, want: Outcome{Remove: true}},
		{name: "no bypasses focus", inputs: []Input{InputToggle, InputNo}, want: Outcome{Remove: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := startSession(t)

			var (
				got      Outcome
				resolved bool
			)
			for i, in := range tt.inputs {
				got, resolved = h.session.Handle(in)
				if i < len(tt.inputs)-1 {
					require.False(t, resolved, "input %d resolved early", i)
				}
			}

			require.True(t, resolved)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 0, h.sched.Active(), "timers must be released")
		})
	}
}

func TestToggleFocus(t *testing.T) {
	h := startSession(t)

	_, resolved := h.session.Handle(InputToggle)
	assert.False(t, resolved)
	assert.Equal(t, ButtonRemove, h.session.Focus())

	h.session.Handle(InputToggle)
	assert.Equal(t, ButtonKeep, h.session.Focus())
}

func TestResolvesExactlyOnce(t *testing.T) {
	h := startSession(t)

	h.sched.Advance(10 * time.Second)
	o, resolved := h.session.Handle(InputYes)
	require.True(t, resolved)
	assert.True(t, o.Remove)

	_, resolved = h.session.Handle(InputNo)
	assert.False(t, resolved)

	// A deadline that slipped through before Stop is inert
	_, resolved = h.session.Receive(DeadlineMsg{SessionID: h.session.ID()})
	assert.False(t, resolved)

	h.sched.Advance(time.Minute)
	assert.Empty(t, h.outcomes)
	assert.Equal(t, 20, h.session.Remaining())
}

func TestReceiveIgnoresOtherSessions(t *testing.T) {
	h := startSession(t)

	h.session.Receive(TickMsg{SessionID: "other"})
	assert.Equal(t, 30, h.session.Remaining())

	_, resolved := h.session.Receive(DeadlineMsg{SessionID: "other"})
	assert.False(t, resolved)
	assert.False(t, h.session.Resolved())

	_, resolved = h.session.Receive("unrelated")
	assert.False(t, resolved)
}

func TestDispose(t *testing.T) {
	h := startSession(t)

	h.session.Dispose()
	assert.True(t, h.session.Resolved())
	assert.Equal(t, 0, h.sched.Active())

	h.sched.Advance(time.Minute)
	assert.Empty(t, h.outcomes)
	assert.Equal(t, 30, h.session.Remaining())
}

func TestCustomTimeout(t *testing.T) {
	h := startSession(t, WithTimeout(5*time.Second))
	assert.Equal(t, 5, h.session.Total())

	h.sched.Advance(5 * time.Second)
	require.Len(t, h.outcomes, 1)
	assert.True(t, h.outcomes[0].TimedOut)
}

func TestClockSchedulerReleasesGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	session := NewSession("planning", WithTimeout(40*time.Millisecond), WithTickInterval(5*time.Millisecond))
	events := make(chan any, 64)
	session.Start(ClockScheduler{}, func(msg any) {
		select {
		case events <- msg:
		default:
		}
	})

	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg := <-events:
			if o, ok := session.Receive(msg); ok {
				assert.True(t, o.TimedOut)
				assert.False(t, o.Remove)
				assert.Less(t, session.Remaining(), session.Total())
				return
			}
		case <-timeout:
			t.Fatal("deadline never fired")
		}
	}
}

func TestClockSchedulerStopBeforeFire(t *testing.T) {
	defer goleak.VerifyNone(t)

	fired := make(chan struct{}, 1)
	sched := ClockScheduler{}
	ticker := sched.Every(time.Hour, func() { fired <- struct{}{} })
	after := sched.After(time.Hour, func() { fired <- struct{}{} })

	ticker.Stop()
	ticker.Stop()
	after.Stop()

	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestNonPositiveDurationsKeepDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"zero tick interval", []Option{WithTickInterval(0)}},
		{"negative tick interval", []Option{WithTickInterval(-time.Second)}},
		{"zero timeout", []Option{WithTimeout(0)}},
		{"negative timeout", []Option{WithTimeout(-5 * time.Second)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h *harness
			require.NotPanics(t, func() { h = startSession(t, tt.opts...) })

			assert.Equal(t, 30, h.session.Total())
			assert.Equal(t, 30, h.session.Remaining())

			h.sched.Advance(DefaultTimeout)
			require.Len(t, h.outcomes, 1)
			assert.True(t, h.outcomes[0].TimedOut)
		})
	}
}

func TestEveryNonPositivePeriodNeverFires(t *testing.T) {
	defer goleak.VerifyNone(t)

	fired := make(chan struct{}, 1)
	var timer Timer
	require.NotPanics(t, func() {
		timer = ClockScheduler{}.Every(0, func() { fired <- struct{}{} })
	})
	timer.Stop()

	manual := NewManualScheduler()
	manual.Every(-time.Second, func() { fired <- struct{}{} })
	manual.Advance(time.Minute)
	assert.Zero(t, manual.Active())

	select {
	case <-fired:
		t.Fatal("non-positive period fired")
	case <-time.After(20 * time.Millisecond):
	}
}
