//go:build windows

package hotkey

import (
	"fmt"
	"runtime"
	"syscall"
	"time"
	"unsafe"

	"go.uber.org/zap"
)

var vkNames = map[uint32]string{
	0x08: "backspace", 0x09: "tab", 0x0D: "enter", 0x13: "pause", 0x14: "capslock", 0x1B: "esc", 0x20: "space",
	0x21: "pageup", 0x22: "pagedown", 0x23: "end", 0x24: "home",
	0x25: "left", 0x26: "up", 0x27: "right", 0x28: "down",
	0x2C: "printscreen", 0x2D: "insert", 0x2E: "delete", 0x91: "scrolllock",
	0x6B: "add", 0x6D: "subtract",
	0x10: "shift", 0x11: "ctrl", 0x12: "alt",
	0xA0: "left shift", 0xA1: "right shift",
	0xA2: "left ctrl", 0xA3: "right ctrl",
	0xA4: "left alt", 0xA5: "right alt",
	0x5B: "left windows", 0x5C: "right windows",
}

func vkName(vk uint32) string {
	switch {
	case vk >= '0' && vk <= '9':
		return string(rune(vk))
	case vk >= 'A' && vk <= 'Z':
		return string(rune(vk - 'A' + 'a'))
	case vk >= 0x60 && vk <= 0x69:
		return fmt.Sprintf("numpad%d", vk-0x60)
	case vk >= 0x70 && vk <= 0x87:
		return fmt.Sprintf("f%d", vk-0x70+1)
	}
	if n, ok := vkNames[vk]; ok {
		return n
	}
	return fmt.Sprintf("vk%02x", vk)
}

// Source runs a WH_KEYBOARD_LL hook feeding a Hub. Events the hub's consumer
// claims are swallowed so the target window never sees the hotkey.
type Source struct {
	hub      *Hub
	logger   *zap.SugaredLogger
	threadID uint32
}

// StartSource installs the hook on a dedicated OS thread.
func StartSource(hub *Hub, logger *zap.SugaredLogger) (*Source, error) {
	s := &Source{hub: hub, logger: logger}
	errCh := make(chan error, 1)
	go s.run(errCh)

	select {
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
		return s, nil
	case <-time.After(2 * time.Second):
		return nil, fmt.Errorf("timeout installing low-level hook")
	}
}

var (
	user32                  = syscall.NewLazyDLL("user32.dll")
	kernel32                = syscall.NewLazyDLL("kernel32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procGetCurrentThreadId  = kernel32.NewProc("GetCurrentThreadId")
)

const (
	whKeyboardLL  = 13
	wmKeydown     = 0x0100
	wmKeyup       = 0x0101
	wmSyskeydown  = 0x0104
	wmSyskeyup    = 0x0105
	wmQuit        = 0x0012
	llkhfInjected = 0x10
)

type kbdllhookstruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt_x    int32
	Pt_y    int32
}

func (s *Source) run(errCh chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid, _, _ := procGetCurrentThreadId.Call()
	s.threadID = uint32(tid)

	swallowed := make(map[uint32]bool)
	callback := syscall.NewCallback(func(nCode, wParam, lParam uintptr) uintptr {
		if int32(nCode) < 0 {
			ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
			return ret
		}
		k := (*kbdllhookstruct)(unsafe.Pointer(lParam))
		// our own injected text must not retrigger bindings
		if k.flags&llkhfInjected != 0 {
			ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
			return ret
		}

		switch uint32(wParam) {
		case wmKeydown, wmSyskeydown:
			if s.hub.Publish(KeyEvent{Name: vkName(k.vkCode), Down: true}) {
				swallowed[k.vkCode] = true
				return 1
			}
		case wmKeyup, wmSyskeyup:
			s.hub.Publish(KeyEvent{Name: vkName(k.vkCode), Down: false})
			if swallowed[k.vkCode] {
				delete(swallowed, k.vkCode)
				return 1
			}
		}
		ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
		return ret
	})

	hook, _, _ := procSetWindowsHookExW.Call(uintptr(whKeyboardLL), callback, 0, 0)
	if hook == 0 {
		errCh <- fmt.Errorf("SetWindowsHookExW failed")
		return
	}
	s.logger.Infow("low-level keyboard hook installed")
	errCh <- nil

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) == -1 {
			s.logger.Warnw("GetMessageW error; exiting hook loop")
			break
		}
		if ret == 0 {
			break
		}
	}
	procUnhookWindowsHookEx.Call(hook)
	s.logger.Infow("low-level keyboard hook uninstalled")
}

// Close removes the hook.
func (s *Source) Close() error {
	if s.threadID != 0 {
		procPostThreadMessageW.Call(uintptr(s.threadID), wmQuit, 0, 0)
	}
	return nil
}
