//go:build !windows

package inject

import "fmt"

// PostAvailable reports whether PostChars can be used.
const PostAvailable = false

// PostChars is not supported on non-Windows builds.
func PostChars(text string) error {
	return fmt.Errorf("window messages not supported on this platform")
}
