// Package clock makes "now" an injected dependency so date-relative rules
// (coupon expiry, card expiry) stay testable.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns a clock backed by time.Now.
func System() Clock { return systemClock{} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }
