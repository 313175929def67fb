package agent

import "github.com/mindkeep-ai/mindkeep/core"

// Observer receives advisory callbacks as the loop runs. Callbacks are
// invoked synchronously from the loop but must not affect control flow; a
// panicking or slow observer is the integrator's problem, not the loop's.
type Observer interface {
	// OnMessage is called after every message appended to history.
	OnMessage(msg core.Message)

	// OnStatus is called on status-string transitions ("Thinking...",
	// "Using Get Weather", ...). An empty string clears the status.
	OnStatus(status string)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	Message func(msg core.Message)
	Status  func(status string)
}

// OnMessage implements Observer.
func (o ObserverFuncs) OnMessage(msg core.Message) {
	if o.Message != nil {
		o.Message(msg)
	}
}

// OnStatus implements Observer.
func (o ObserverFuncs) OnStatus(status string) {
	if o.Status != nil {
		o.Status(status)
	}
}

type noopObserver struct{}

func (noopObserver) OnMessage(core.Message) {}
func (noopObserver) OnStatus(string)        {}
