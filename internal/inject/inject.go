// Package inject delivers accepted text to the window that has input focus.
package inject

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"openwhisper/internal/clipboard"
)

// Injector types text into the focused window.
type Injector interface {
	Inject(text string) error
}

// InjectorFunc adapts a function to Injector.
type InjectorFunc func(text string) error

// Inject calls f.
func (f InjectorFunc) Inject(text string) error { return f(text) }

// InjectionError reports a failed delivery. It is never fatal.
type InjectionError struct {
	Mode string
	Err  error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("inject (%s): %v", e.Mode, e.Err)
}

func (e *InjectionError) Unwrap() error { return e.Err }

// Mode names the delivery primitive.
const (
	ModeAuto  = "auto"
	ModePost  = "post"
	ModeType  = "type"
	ModePaste = "paste"
)

// DefaultSettle is the pause before delivery so the hotkey's own key-up
// events reach the target first.
const DefaultSettle = 100 * time.Millisecond

// Deliverer appends the trailing separator, waits the settle delay and
// injects.
type Deliverer struct {
	injector Injector
	mode     string
	settle   time.Duration
	logger   *zap.SugaredLogger
	sleep    func(time.Duration)
}

// NewDeliverer wraps injector. mode is only used for reporting.
func NewDeliverer(injector Injector, mode string, settle time.Duration, logger *zap.SugaredLogger) *Deliverer {
	return &Deliverer{injector: injector, mode: mode, settle: settle, logger: logger, sleep: time.Sleep}
}

// Deliver injects text followed by one space. The returned error is an
// *InjectionError and has already been logged.
func (d *Deliverer) Deliver(text string) error {
	d.sleep(d.settle)
	if err := d.injector.Inject(text + " "); err != nil {
		ierr := &InjectionError{Mode: d.mode, Err: err}
		d.logger.Warnw("text injection failed", "mode", d.mode, "error", err)
		return ierr
	}
	d.logger.Debugw("text injected", "mode", d.mode, "chars", len(text)+1)
	return nil
}

// Select returns the injector for mode. "auto" uses window messages where
// the platform supports them and keystroke synthesis elsewhere.
func Select(mode string) (Injector, string, error) {
	switch mode {
	case ModeAuto, "":
		if PostAvailable {
			return InjectorFunc(PostChars), ModePost, nil
		}
		return InjectorFunc(TypeString), ModeType, nil
	case ModePost:
		if !PostAvailable {
			return nil, "", fmt.Errorf("inject mode %q is not available on this platform", mode)
		}
		return InjectorFunc(PostChars), ModePost, nil
	case ModeType:
		return InjectorFunc(TypeString), ModeType, nil
	case ModePaste:
		return clipboard.NewPaster(), ModePaste, nil
	default:
		return nil, "", fmt.Errorf("unknown inject mode %q", mode)
	}
}
