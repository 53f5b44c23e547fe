//go:build !windows

package autostart

// Supported reports whether Set has an effect on this platform.
const Supported = false

// Set is a no-op outside Windows.
func Set(enable bool) error {
	return nil
}
