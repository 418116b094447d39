package moneyhero

// Scheduler runs work after the operation that submitted it has returned.
type Scheduler interface {
	Defer(fn func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(fn func())

// Defer calls f(fn).
func (f SchedulerFunc) Defer(fn func()) { f(fn) }

// GoScheduler runs each deferred function on its own goroutine.
var GoScheduler Scheduler = SchedulerFunc(func(fn func()) { go fn() })
