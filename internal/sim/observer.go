package sim

import "github.com/san-kum/galaxysim/internal/dynamo"

// Observer is notified after every successful step. The System must not be
// mutated or retained past the call.
type Observer interface {
	OnTick(sys *dynamo.System, t float64)
}

type ObserverFunc func(sys *dynamo.System, t float64)

func (f ObserverFunc) OnTick(sys *dynamo.System, t float64) { f(sys, t) }

// Resetter is implemented by observers that accumulate state across steps
// and must start over when the System is regenerated.
type Resetter interface {
	Reset()
}
