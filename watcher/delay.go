package watcher

import "time"

// A delay is a timeout that can be retriggered. Retriggering while the timer
// is pending pushes the deadline back instead of resetting the timer, so the
// receiver must check remainingTime when the channel fires.
type delay struct {
	timer    *time.Timer
	channel  <-chan time.Time
	deadline time.Time
}

// trigger causes the delay channel to fire after dt, or later if trigger is
// called again.
func (d *delay) trigger(dt time.Duration) {
	if d.channel != nil {
		d.deadline = time.Now().Add(dt)
		return
	}
	if d.timer == nil {
		d.timer = time.NewTimer(dt)
	} else {
		d.timer.Reset(dt)
	}
	d.channel = d.timer.C
	d.deadline = time.Time{}
}

// fired marks the channel as received, and returns the time left until the
// most recent deadline.
func (d *delay) fired() time.Duration {
	d.channel = nil
	if d.deadline.IsZero() {
		return 0
	}
	return time.Until(d.deadline)
}

func (d *delay) stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.channel = nil
}
