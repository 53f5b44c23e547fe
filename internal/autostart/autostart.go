// Package autostart registers the executable to run at user logon.
package autostart

// ValueName is the name of the Run-key entry.
const ValueName = "OpenWhisper"

// Quote wraps an executable path for the Run key.
func Quote(exe string) string {
	return `"` + exe + `"`
}
