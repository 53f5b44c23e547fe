//go:build windows

package inject

import (
	"fmt"
	"syscall"
	"unicode/utf16"
)

// PostAvailable reports whether PostChars can be used.
const PostAvailable = true

const wmChar = 0x0102

var (
	user32                  = syscall.NewLazyDLL("user32.dll")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procPostMessageW        = user32.NewProc("PostMessageW")
)

// PostChars posts one WM_CHAR per UTF-16 code unit to the foreground window.
func PostChars(text string) error {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return fmt.Errorf("no foreground window")
	}
	for _, unit := range utf16.Encode([]rune(text)) {
		r, _, err := procPostMessageW.Call(hwnd, wmChar, uintptr(unit), 0)
		if r == 0 {
			return fmt.Errorf("PostMessageW failed: %v", err)
		}
	}
	return nil
}
