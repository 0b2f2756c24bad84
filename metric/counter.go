package metric

import (
	"time"

	"github.com/viant/gmetric/counter"
)

//Event is a counted operation outcome.
type Event string

const (
	Pending Event = "Pending"
	Error   Event = "Error"
	Success Event = "Success"
	NoMatch Event = "NoMatch"
)

//Counter is the operation counter surface used across the module.
type Counter interface {
	Begin(started time.Time) counter.OnDone
	DecrementValue(value interface{}) int64
	IncrementValue(value interface{}) int64
}

//NewCounter creates a nil tolerant counter adapter.
func NewCounter(counter Counter) *CounterAdapter {
	return &CounterAdapter{
		counter: counter,
	}
}

//CounterAdapter guards counter calls against an absent metric service.
type CounterAdapter struct {
	counter Counter
}

//Begin starts measuring an operation.
func (c *CounterAdapter) Begin(started time.Time) counter.OnDone {
	if c.counter == nil {
		return nopOnDone
	}
	return c.counter.Begin(started)
}

//DecrementValue decrements the named value state.
func (c *CounterAdapter) DecrementValue(value interface{}) int64 {
	if c.counter == nil {
		return 0
	}
	return c.counter.DecrementValue(value)
}

//IncrementValue increments the named value state.
func (c *CounterAdapter) IncrementValue(value interface{}) int64 {
	if c.counter == nil {
		return 0
	}
	return c.counter.IncrementValue(value)
}

func nopOnDone(_ time.Time, _ ...interface{}) int64 {
	return 0
}
