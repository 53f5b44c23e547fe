package hotkey

import (
	"sync"

	"go.uber.org/zap"
)

// Action is what a bound hotkey asks the session to do.
type Action int

const (
	ActionStart Action = iota + 1
	ActionStop
	ActionToggle
	ActionReplay
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionToggle:
		return "toggle"
	case ActionReplay:
		return "replay"
	default:
		return "none"
	}
}

// Binder turns raw key events into actions. In hold mode the record combo
// starts on key down and stops when its main key is released; in toggle
// mode each press toggles. Auto-repeat downs are ignored.
type Binder struct {
	mu       sync.Mutex
	record   Combo
	replay   Combo
	toggle   bool
	enabled  bool
	holding  bool
	pressed  map[string]bool
	dispatch func(Action)
	logger   *zap.SugaredLogger
}

// NewBinder binds record and replay combos. dispatch is called from the key
// source goroutine and must not block.
func NewBinder(record, replay Combo, toggle bool, dispatch func(Action), logger *zap.SugaredLogger) *Binder {
	return &Binder{
		record:   record,
		replay:   replay,
		toggle:   toggle,
		enabled:  true,
		pressed:  make(map[string]bool),
		dispatch: dispatch,
		logger:   logger,
	}
}

// Rebind replaces the record combo and mode.
func (b *Binder) Rebind(record Combo, toggle bool) {
	b.mu.Lock()
	b.record = record
	b.toggle = toggle
	b.holding = false
	b.mu.Unlock()
	b.logger.Infow("hotkey bound", "hotkey", record.String(), "toggle", toggle)
}

// SetEnabled pauses or resumes action dispatch. Key state is still tracked.
func (b *Binder) SetEnabled(enabled bool) {
	b.mu.Lock()
	b.enabled = enabled
	b.mu.Unlock()
}

// Handle processes one event and reports whether it triggered a binding.
func (b *Binder) Handle(ev KeyEvent) bool {
	name := Canonical(ev.Name)
	if name == "" {
		return false
	}

	b.mu.Lock()
	var actions []Action
	consumed := false
	if ev.Down {
		repeat := b.pressed[name]
		b.pressed[name] = true
		if b.enabled && name == b.record.Key && b.modsHeld(b.record) {
			consumed = true
			if !repeat {
				switch {
				case b.toggle:
					actions = append(actions, ActionToggle)
				case !b.holding:
					b.holding = true
					actions = append(actions, ActionStart)
				}
			}
		} else if b.enabled && name == b.replay.Key && b.modsHeld(b.replay) {
			consumed = true
			if !repeat {
				actions = append(actions, ActionReplay)
			}
		}
	} else {
		delete(b.pressed, name)
		if name == b.record.Key && b.holding {
			b.holding = false
			consumed = true
			actions = append(actions, ActionStop)
		}
	}
	b.mu.Unlock()

	for _, a := range actions {
		b.logger.Debugw("hotkey action", "action", a.String(), "key", name)
		b.dispatch(a)
	}
	return consumed
}

func (b *Binder) modsHeld(c Combo) bool {
	for _, m := range c.Mods {
		if !b.pressed[m] {
			return false
		}
	}
	return true
}
