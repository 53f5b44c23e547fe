package hotkey

import (
	"errors"
	"sync"
)

var (
	ErrNoKeysRecorded   = errors.New("no keys recorded")
	ErrAlreadyListening = errors.New("hotkey recorder already listening")
	ErrNotListening     = errors.New("hotkey recorder not listening")
)

// Recorder collects key-down events into a hotkey descriptor.
type Recorder struct {
	listener Listener

	mu          sync.Mutex
	keys        map[string]bool
	unsubscribe func()
}

// NewRecorder returns an idle recorder reading from listener.
func NewRecorder(listener Listener) *Recorder {
	return &Recorder{listener: listener}
}

// Listening reports whether Start has been called without Stop.
func (r *Recorder) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unsubscribe != nil
}

// Start begins collecting keys.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unsubscribe != nil {
		return ErrAlreadyListening
	}
	r.keys = make(map[string]bool)
	r.unsubscribe = r.listener.Subscribe(r.observe)
	return nil
}

func (r *Recorder) observe(ev KeyEvent) {
	name := Canonical(ev.Name)
	if !ev.Down || name == "" {
		return
	}
	r.mu.Lock()
	if r.keys != nil {
		r.keys[name] = true
	}
	r.mu.Unlock()
}

// Stop ends collection and returns the sorted, "+"-joined descriptor.
func (r *Recorder) Stop() (string, error) {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	keys := r.keys
	r.unsubscribe = nil
	r.keys = nil
	r.mu.Unlock()

	if unsubscribe == nil {
		return "", ErrNotListening
	}
	unsubscribe()
	if len(keys) == 0 {
		return "", ErrNoKeysRecorded
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	return Descriptor(names), nil
}
