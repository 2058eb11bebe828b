package avatar

import "time"

// TimerFunc schedules fn after d and returns a cancel function. The
// scheduler never touches real clocks directly, so tests can drive it
// with a fake.
type TimerFunc func(d time.Duration, fn func()) (cancel func())

// AfterFuncTimer is the production TimerFunc, backed by time.AfterFunc.
func AfterFuncTimer(d time.Duration, fn func()) (cancel func()) {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// schedulerFallback substitutes for a frame with no usable duration
// when no fps cap supplies a floor.
const schedulerFallback = 100 * time.Millisecond

// Scheduler advances a playback cursor through a rendered frame
// sequence, re-arming one timer per frame sized to that frame's
// clamped duration. It has two states: Idle (no frames) and Playing.
// All methods must be called from the single UI loop; the scheduler
// does no locking because nothing else touches the cursor.
//
// Exactly one timer is pending at any moment while Playing. Re-arming
// cancels the previous timer first, since a duplicate pending timer
// would double the animation speed.
type Scheduler struct {
	timer  TimerFunc
	redraw func()

	frames  []RenderedFrame
	index   int
	minDur  time.Duration
	cancel  func()
	playing bool
}

// NewScheduler creates an idle scheduler. redraw may be nil.
func NewScheduler(timer TimerFunc, redraw func()) *Scheduler {
	return &Scheduler{timer: timer, redraw: redraw}
}

// Start replaces the frame sequence and begins playback from frame 0.
// Any pending timer is cancelled first so a stale firing cannot
// advance the new sequence. An empty sequence leaves the scheduler
// Idle.
func (s *Scheduler) Start(frames []RenderedFrame, fpsCap float64) {
	s.Stop()
	s.frames = frames
	s.index = 0
	s.minDur = 0
	if fpsCap > 0 {
		s.minDur = time.Duration(float64(time.Second) / fpsCap)
	}
	if len(frames) == 0 {
		return
	}
	s.playing = true
	s.arm()
}

// Stop cancels any pending timer and returns to Idle.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.playing = false
}

// Advance moves the cursor to the next frame, triggers a redraw, and
// re-arms the timer for the new frame's duration. No-op while Idle.
func (s *Scheduler) Advance() {
	if !s.playing {
		return
	}
	s.index = (s.index + 1) % len(s.frames)
	if s.redraw != nil {
		s.redraw()
	}
	s.arm()
}

// Index returns the current frame index.
func (s *Scheduler) Index() int { return s.index }

// Playing reports whether a sequence is loaded and being advanced.
func (s *Scheduler) Playing() bool { return s.playing }

func (s *Scheduler) arm() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	d := ClampDuration(s.frames[s.index].Duration, s.minDur)
	s.cancel = s.timer(d, s.Advance)
}

// ClampDuration applies the playback floor to a frame duration. A
// configured fps cap acts as a speed ceiling: durations shorter than
// the floor are stretched up to it, longer ones pass unchanged. A
// non-positive duration becomes the floor, or 100ms when no floor is
// configured.
func ClampDuration(d, min time.Duration) time.Duration {
	if d <= 0 {
		if min > 0 {
			return min
		}
		return schedulerFallback
	}
	if d < min {
		return min
	}
	return d
}
