package record

// EventSink observes the session. Calls are made outside the session lock
// from the goroutine that called Start or Stop, so sinks must not block.
type EventSink interface {
	StateChanged(State)
	Processed(Result)
}

// Sinks fans events out to several sinks.
type Sinks []EventSink

// StateChanged implements EventSink.
func (m Sinks) StateChanged(st State) {
	for _, s := range m {
		s.StateChanged(st)
	}
}

// Processed implements EventSink.
func (m Sinks) Processed(r Result) {
	for _, s := range m {
		s.Processed(r)
	}
}

type nopSink struct{}

func (nopSink) StateChanged(State) {}
func (nopSink) Processed(Result)   {}
