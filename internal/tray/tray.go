// Package tray shows the system tray icon and menu.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"openwhisper/internal/record"
	"openwhisper/internal/transcript"
)

// Actions are invoked from menu clicks.
type Actions interface {
	ToggleRecording()
	ReplayLast()
	Quit()
}

// Tray owns the systray loop. It implements record.EventSink so the
// recording item follows the session state.
type Tray struct {
	actions Actions
	logger  *zap.SugaredLogger

	mu        sync.Mutex
	ready     bool
	record    *systray.MenuItem
	replay    *systray.MenuItem
	state     record.State
	hasReplay bool
}

// New returns a tray bound to actions.
func New(actions Actions, logger *zap.SugaredLogger) *Tray {
	return &Tray{actions: actions, logger: logger}
}

// Run blocks running the tray loop. It must be called from the main
// goroutine on macOS.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() { t.logger.Infow("tray exited") })
}

// Quit ends Run.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetIcon(Icon())
	systray.SetTitle("")
	systray.SetTooltip("Open Whisper: idle")

	rec := systray.AddMenuItem(recordLabel(record.StateIdle), "Start or stop recording")
	replay := systray.AddMenuItem("Replay Last", "Type the last transcription again")
	systray.AddSeparator()
	quit := systray.AddMenuItem("Exit", "Quit Open Whisper")

	replay.Disable()

	t.mu.Lock()
	t.ready = true
	t.record = rec
	t.replay = replay
	st := t.state
	has := t.hasReplay
	t.mu.Unlock()
	t.apply(st)
	if has {
		replay.Enable()
	}

	go func() {
		for {
			select {
			case <-rec.ClickedCh:
				t.actions.ToggleRecording()
			case <-replay.ClickedCh:
				t.actions.ReplayLast()
			case <-quit.ClickedCh:
				t.actions.Quit()
				return
			}
		}
	}()
}

// StateChanged implements record.EventSink.
func (t *Tray) StateChanged(st record.State) {
	t.mu.Lock()
	t.state = st
	ready := t.ready
	t.mu.Unlock()
	if ready {
		t.apply(st)
	}
}

// Processed implements record.EventSink. Replay Last is enabled once a
// transcription has been accepted.
func (t *Tray) Processed(r record.Result) {
	if !replayable(r) {
		return
	}
	t.mu.Lock()
	first := !t.hasReplay
	t.hasReplay = true
	ready, item := t.ready, t.replay
	t.mu.Unlock()
	if first && ready {
		item.Enable()
	}
}

// replayable reports whether r left text in the replay cache.
func replayable(r record.Result) bool {
	return r.Verdict == transcript.VerdictAccepted && r.Text != ""
}

func (t *Tray) apply(st record.State) {
	t.mu.Lock()
	item := t.record
	t.mu.Unlock()
	item.SetTitle(recordLabel(st))
	if st == record.StateProcessing {
		item.Disable()
	} else {
		item.Enable()
	}
	systray.SetTooltip("Open Whisper: " + st.String())
}

func recordLabel(st record.State) string {
	switch st {
	case record.StateRecording:
		return "Stop Recording"
	case record.StateProcessing:
		return "Processing..."
	default:
		return "Start Recording"
	}
}
