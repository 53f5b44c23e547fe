package inject

import "github.com/go-vgo/robotgo"

// TypeString synthesizes keystrokes for text into the focused window.
// robotgo reports no failures, so the error is always nil and type mode
// never produces an InjectionError; a missing target window goes unnoticed.
func TypeString(text string) error {
	robotgo.TypeStr(text)
	return nil
}
