// Package clipboard injects text by pasting it through the system clipboard.
package clipboard

import (
	"fmt"
	"runtime"
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

// Paster writes text to the clipboard, sends Ctrl+V (Cmd+V on macOS), and
// restores the previous clipboard contents.
type Paster struct {
	// Restore is how long to wait after the keystroke before restoring the
	// previous clipboard. Too short and the target reads the old contents.
	Restore time.Duration

	readAll  func() (string, error)
	writeAll func(string) error
	paste    func() error
	sleep    func(time.Duration)
}

// NewPaster returns a Paster with the default restore delay.
func NewPaster() *Paster {
	return &Paster{
		Restore:  120 * time.Millisecond,
		readAll:  clipboard.ReadAll,
		writeAll: clipboard.WriteAll,
		paste:    pasteKeystroke,
		sleep:    time.Sleep,
	}
}

// Inject pastes text into the focused window. Once text has been written the
// previous contents are put back on every path, unless they could not be read.
func (p *Paster) Inject(text string) error {
	orig, readErr := p.readAll()
	if err := p.writeAll(text); err != nil {
		return fmt.Errorf("clipboard write failed: %w", err)
	}
	if readErr == nil {
		defer func() { _ = p.writeAll(orig) }()
	}
	p.sleep(80 * time.Millisecond)

	if err := p.paste(); err != nil {
		return err
	}
	p.sleep(p.Restore)
	return nil
}

func pasteKeystroke() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return fmt.Errorf("keyboard init failed: %w", err)
	}
	if runtime.GOOS == "linux" {
		// uinput devices are not usable until udev has picked them up
		time.Sleep(2 * time.Second)
	}
	if runtime.GOOS == "darwin" {
		kb.HasSuper(true)
	} else {
		kb.HasCTRL(true)
	}
	kb.SetKeys(keybd_event.VK_V)
	if err := kb.Launching(); err != nil {
		return fmt.Errorf("paste keystroke failed: %w", err)
	}
	return nil
}
