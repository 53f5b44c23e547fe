// Package hotkey observes global key events, binds the recording and replay
// hotkeys to session actions, and records new hotkey descriptors.
package hotkey

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// KeyEvent is one raw key transition. Name is the platform key name, e.g.
// "left ctrl", "space", "a", "f5".
type KeyEvent struct {
	Name string
	Down bool
}

// Listener delivers raw key events to subscribers.
type Listener interface {
	Subscribe(fn func(KeyEvent)) (unsubscribe func())
}

var modifierAliases = map[string]string{
	"ctrl": "ctrl", "control": "ctrl", "left ctrl": "ctrl", "right ctrl": "ctrl", "lctrl": "ctrl", "rctrl": "ctrl",
	"alt": "alt", "menu": "alt", "left alt": "alt", "right alt": "alt", "lalt": "alt", "ralt": "alt", "alt gr": "alt", "altgr": "alt",
	"shift": "shift", "left shift": "shift", "right shift": "shift", "lshift": "shift", "rshift": "shift",
	"win": "win", "windows": "win", "left windows": "win", "right windows": "win", "meta": "win", "super": "win",
	"cmd": "win", "command": "win", "lcmd": "win", "rcmd": "win",
}

var keyAliases = map[string]string{
	"escape":    "esc",
	"return":    "enter",
	"spacebar":  "space",
	"page up":   "pageup",
	"page down": "pagedown",
	"pgup":      "pageup",
	"pgdn":      "pagedown",
	"del":       "delete",
	"ins":       "insert",
	"plus":      "add",
	"kpadd":     "add",
	"minus":     "subtract",
	"kpsubtract": "subtract",
}

// Canonical folds left/right modifier variants and aliases into one name.
func Canonical(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if m, ok := modifierAliases[n]; ok {
		return m
	}
	if k, ok := keyAliases[n]; ok {
		return k
	}
	for _, p := range []string{"numpad", "num ", "num", "kp"} {
		if rest := strings.TrimPrefix(n, p); rest != n && len(rest) == 1 && rest[0] >= '0' && rest[0] <= '9' {
			return "numpad" + rest
		}
	}
	return n
}

// IsModifier reports whether a canonical name is a modifier.
func IsModifier(canonical string) bool {
	switch canonical {
	case "ctrl", "alt", "shift", "win":
		return true
	}
	return false
}

// Descriptor joins canonical key names into the sorted "+" form.
func Descriptor(names []string) string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return strings.Join(out, "+")
}

// Combo is a parsed hotkey: a set of modifiers plus one main key.
type Combo struct {
	Mods []string
	Key  string
}

// ParseCombo accepts strings like "ctrl+alt+space", "alt+ctrl+space",
// "ctrl+shift+F1" or "esc". Token order does not matter.
func ParseCombo(s string) (Combo, error) {
	if strings.TrimSpace(s) == "" {
		return Combo{}, fmt.Errorf("empty key")
	}
	var c Combo
	seen := map[string]bool{}
	for _, raw := range strings.Split(s, "+") {
		tok := Canonical(raw)
		if tok == "" {
			return Combo{}, fmt.Errorf("empty token in %q", s)
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		if IsModifier(tok) {
			c.Mods = append(c.Mods, tok)
			continue
		}
		if c.Key != "" {
			return Combo{}, fmt.Errorf("hotkey %q has more than one main key (%s, %s)", s, c.Key, tok)
		}
		if !validKey(tok) {
			return Combo{}, fmt.Errorf("unsupported key token: %s", raw)
		}
		c.Key = tok
	}
	if c.Key == "" {
		return Combo{}, fmt.Errorf("hotkey %q has no main key", s)
	}
	sort.Strings(c.Mods)
	return c, nil
}

// String returns the canonical descriptor.
func (c Combo) String() string {
	return Descriptor(append(append([]string(nil), c.Mods...), c.Key))
}

var namedKeys = map[string]bool{
	"space": true, "enter": true, "esc": true, "tab": true, "backspace": true,
	"insert": true, "delete": true, "home": true, "end": true, "pageup": true, "pagedown": true,
	"left": true, "up": true, "right": true, "down": true, "add": true, "subtract": true,
	"capslock": true, "pause": true, "printscreen": true, "scrolllock": true,
}

func validKey(tok string) bool {
	if len(tok) == 1 {
		return true
	}
	if namedKeys[tok] {
		return true
	}
	if strings.HasPrefix(tok, "numpad") && len(tok) == len("numpad")+1 {
		return true
	}
	if strings.HasPrefix(tok, "f") {
		if n, err := strconv.Atoi(strings.TrimPrefix(tok, "f")); err == nil && n >= 1 && n <= 24 {
			return true
		}
	}
	return false
}
