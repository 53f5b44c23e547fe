//go:build !windows

package hotkey

import (
	"sort"

	hook "github.com/robotn/gohook"
	"go.uber.org/zap"
)

// gohook reports both sides of a modifier under one code on some platforms;
// the explicit left/right names win over the generic ones.
var hookModifierNames = map[string]string{
	"lctrl": "left ctrl", "rctrl": "right ctrl",
	"lalt": "left alt", "ralt": "right alt",
	"lshift": "left shift", "rshift": "right shift",
	"lcmd": "left windows", "rcmd": "right windows",
}

var keycodeNames = buildKeycodeNames()

func buildKeycodeNames() map[uint16]string {
	names := make([]string, 0, len(hook.Keycode))
	for n := range hook.Keycode {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make(map[uint16]string, len(names))
	for _, n := range names {
		code := hook.Keycode[n]
		if pretty, ok := hookModifierNames[n]; ok {
			out[code] = pretty
			continue
		}
		if _, taken := out[code]; !taken {
			out[code] = n
		}
	}
	return out
}

func keyName(ev hook.Event) string {
	if n, ok := keycodeNames[ev.Keycode]; ok {
		return n
	}
	return hook.RawcodetoKeychar(ev.Rawcode)
}

// Source feeds a Hub from gohook. Events cannot be swallowed here, so the
// consumer's verdict is ignored.
type Source struct {
	hub    *Hub
	logger *zap.SugaredLogger
	done   chan struct{}
}

// StartSource starts the global hook.
func StartSource(hub *Hub, logger *zap.SugaredLogger) (*Source, error) {
	s := &Source{hub: hub, logger: logger, done: make(chan struct{})}
	events := hook.Start()
	go s.run(events)
	logger.Infow("global key hook started")
	return s, nil
}

func (s *Source) run(events chan hook.Event) {
	defer close(s.done)
	for ev := range events {
		switch ev.Kind {
		// KeyDown is the typed-character event; KeyHold is the physical press.
		case hook.KeyHold:
			s.hub.Publish(KeyEvent{Name: keyName(ev), Down: true})
		case hook.KeyUp:
			s.hub.Publish(KeyEvent{Name: keyName(ev), Down: false})
		}
	}
}

// Close stops the hook.
func (s *Source) Close() error {
	hook.End()
	<-s.done
	return nil
}
