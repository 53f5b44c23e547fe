package app

import (
	"context"
	"fmt"

	"openwhisper/internal/autostart"
	"openwhisper/internal/control"
	"openwhisper/internal/history"
	"openwhisper/internal/hotkey"
	"openwhisper/internal/settings"
)

// StartRecording implements control.Controller.
func (a *App) StartRecording() error {
	return a.session.Start()
}

// StopRecording implements control.Controller. It returns once the
// utterance has been processed.
func (a *App) StopRecording(ctx context.Context) error {
	_, err := a.session.Stop(ctx)
	return err
}

// Replay implements control.Controller.
func (a *App) Replay() (bool, error) {
	return a.session.Replay()
}

// Shutdown implements control.Controller.
func (a *App) Shutdown() {
	a.logger.Infow("shutdown requested")
	a.cancel()
}

// Status implements control.Controller.
func (a *App) Status() control.Status {
	cur := a.settings.Get()
	_, has := a.session.Cache().Get()
	return control.Status{
		State:     a.session.State().String(),
		Model:     a.invoker.Model(),
		Hotkey:    cur.Hotkey,
		Toggle:    cur.ToggleMode,
		HasReplay: has,
		Capturing: a.recorder.Listening(),
	}
}

// History implements control.Controller.
func (a *App) History() []history.Entry {
	return a.history.List()
}

// ClearHistory implements control.Controller.
func (a *App) ClearHistory() error {
	return a.history.Clear()
}

// ReplayHistory types a stored transcription again.
func (a *App) ReplayHistory(id string) error {
	e, err := a.history.Get(id)
	if err != nil {
		return err
	}
	return a.deliverer.Deliver(e.Text)
}

// Settings implements control.Controller.
func (a *App) Settings() settings.Settings {
	return a.settings.Get()
}

// UpdateSettings validates p, persists it and applies it to the running
// components.
func (a *App) UpdateSettings(p control.SettingsPatch) (settings.Settings, error) {
	var combo hotkey.Combo
	if p.Hotkey != nil {
		c, err := hotkey.ParseCombo(*p.Hotkey)
		if err != nil {
			return a.settings.Get(), fmt.Errorf("%w: hotkey: %v", control.ErrInvalid, err)
		}
		combo = c
	}
	if p.Model != nil && !a.validModel(*p.Model) {
		return a.settings.Get(), fmt.Errorf("%w: unknown model %q", control.ErrInvalid, *p.Model)
	}
	if p.AutoStart != nil && *p.AutoStart && !autostart.Supported {
		return a.settings.Get(), fmt.Errorf("%w: auto-start is not supported on this platform", control.ErrInvalid)
	}
	if p.AutoStart != nil {
		if err := autostart.Set(*p.AutoStart); err != nil {
			return a.settings.Get(), fmt.Errorf("auto-start: %w", err)
		}
	}

	st, err := a.settings.Update(func(s *settings.Settings) {
		if p.Hotkey != nil {
			s.Hotkey = combo.String()
		}
		if p.ToggleMode != nil {
			s.ToggleMode = *p.ToggleMode
		}
		if p.Model != nil {
			s.Model = *p.Model
		}
		if p.AutoStart != nil {
			s.AutoStart = *p.AutoStart
		}
	})
	if err != nil {
		return st, err
	}

	if p.Model != nil {
		a.invoker.SetModel(st.Model)
	}
	if p.Hotkey != nil || p.ToggleMode != nil {
		a.binder.Rebind(a.recordCombo(st.Hotkey), st.ToggleMode)
	}
	a.logger.Infow("settings updated", "hotkey", st.Hotkey, "toggle", st.ToggleMode, "model", st.Model, "auto_start", st.AutoStart)
	return st, nil
}

// validModel accepts the offered model names for the local server; hosted
// engines take any non-empty name.
func (a *App) validModel(m string) bool {
	if a.cfg.Engine == "openai" {
		return m != ""
	}
	return settings.ValidModel(m)
}

// StartHotkeyCapture begins recording a new hotkey. Bindings are paused
// until the capture stops.
func (a *App) StartHotkeyCapture() error {
	if err := a.recorder.Start(); err != nil {
		return err
	}
	a.binder.SetEnabled(false)
	return nil
}

// StopHotkeyCapture ends the capture and, when the keys form a valid combo,
// persists and binds it.
func (a *App) StopHotkeyCapture() (string, error) {
	desc, err := a.recorder.Stop()
	a.binder.SetEnabled(true)
	if err != nil {
		return "", err
	}
	if _, err := hotkey.ParseCombo(desc); err != nil {
		return "", fmt.Errorf("%w: %s: %v", control.ErrInvalid, desc, err)
	}
	st, err := a.UpdateSettings(control.SettingsPatch{Hotkey: &desc})
	if err != nil {
		return "", err
	}
	return st.Hotkey, nil
}

// ToggleRecording implements tray.Actions.
func (a *App) ToggleRecording() { a.dispatch(hotkey.ActionToggle) }

// ReplayLast implements tray.Actions.
func (a *App) ReplayLast() { a.dispatch(hotkey.ActionReplay) }

// Quit implements tray.Actions.
func (a *App) Quit() { a.Shutdown() }
