// Package app wires configuration, the recording session, hotkeys, the
// control surface and the tray into one running process.
package app

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/sync/errgroup"

	"openwhisper/internal/asr"
	"openwhisper/internal/audio"
	"openwhisper/internal/audio/portaudio"
	"openwhisper/internal/autostart"
	"openwhisper/internal/config"
	"openwhisper/internal/control"
	"openwhisper/internal/history"
	"openwhisper/internal/hotkey"
	"openwhisper/internal/inject"
	"openwhisper/internal/notify"
	"openwhisper/internal/record"
	"openwhisper/internal/settings"
	"openwhisper/internal/transcript"
	"openwhisper/internal/tray"
	"openwhisper/internal/utterance"
)

// SetupError is a fatal startup failure of one component.
type SetupError struct {
	Component string
	Err       error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup %s: %v", e.Component, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// App holds the running components. It implements control.Controller and
// tray.Actions.
type App struct {
	cfg    config.Config
	logger *zap.SugaredLogger

	settings  *settings.Store
	history   *history.Store
	invoker   *asr.Invoker
	session   *record.Session
	deliverer *inject.Deliverer
	notifier  *notify.Notifier

	binder   *hotkey.Binder
	recorder *hotkey.Recorder

	actions chan hotkey.Action
	cancel  context.CancelFunc
}

// Run starts every component and blocks until shutdown is requested by
// signal, the control surface or the tray.
func Run(cfg config.Config, logger *zap.SugaredLogger) error {
	tempDir := config.TempDir(&cfg)
	cleanupOldTempFiles(tempDir, logger)

	st, err := openSettings(cfg)
	if err != nil {
		return &SetupError{Component: "settings", Err: err}
	}
	hist, err := history.Open(config.ResolveHistoryPath(&cfg), cfg.HistoryLimit)
	if err != nil {
		return &SetupError{Component: "history", Err: err}
	}

	httpClient := newHTTPClient(cfg)
	engine, err := newEngine(cfg, httpClient, logger.Named("asr"))
	if err != nil {
		return &SetupError{Component: "engine", Err: err}
	}
	cur := st.Get()
	invoker := asr.NewInvoker(engine, cur.Model, cfg.Language, cfg.Prompt, logger.Named("asr"))

	injector, mode, err := inject.Select(cfg.InjectMode)
	if err != nil {
		return &SetupError{Component: "inject", Err: err}
	}
	settle := time.Duration(cfg.SettleDelayMS) * time.Millisecond
	deliverer := inject.NewDeliverer(injector, mode, settle, logger.Named("inject"))

	device, err := portaudio.New()
	if err != nil {
		return &SetupError{Component: "audio device", Err: err}
	}
	defer func() {
		if err := device.Close(); err != nil {
			logger.Warnw("audio terminate failed", "error", err)
		}
	}()

	replay, err := hotkey.ParseCombo(cfg.ReplayKey)
	if err != nil {
		return &SetupError{Component: "replay hotkey", Err: err}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &App{
		cfg:       cfg,
		logger:    logger,
		settings:  st,
		history:   hist,
		invoker:   invoker,
		deliverer: deliverer,
		notifier:  notify.New(cfg.Cues, cfg.Notification, logger.Named("notify")),
		actions:   make(chan hotkey.Action, 16),
		cancel:    cancel,
	}

	events := control.NewEvents(logger.Named("events"))
	var tr *tray.Tray
	sinks := record.Sinks{events, notifySink{a.notifier}}
	if cfg.Tray {
		tr = tray.New(a, logger.Named("tray"))
		sinks = append(sinks, tr)
	}

	a.session = record.New(record.Options{
		Device:      device,
		Format:      formatFromConfig(cfg),
		MinDuration: time.Duration(cfg.MinDurationMS) * time.Millisecond,
		ScratchDir:  tempDir,
		Transcriber: invoker,
		Deliverer:   deliverer,
		Cache:       &transcript.Cache{},
		History:     hist,
		Cues:        a.notifier,
		Events:      sinks,
		Logger:      logger.Named("record"),
	})

	hub := hotkey.NewHub()
	a.binder = hotkey.NewBinder(a.recordCombo(cur.Hotkey), replay, cur.ToggleMode, a.dispatch, logger.Named("hotkey"))
	hub.SetConsumer(a.binder.Handle)
	a.recorder = hotkey.NewRecorder(hub)
	if cfg.HotKeyHook {
		src, err := hotkey.StartSource(hub, logger.Named("hotkey"))
		if err != nil {
			// the control surface still works without global keys
			logger.Errorw("global key hook unavailable", "error", err)
		} else {
			defer func() {
				if err := src.Close(); err != nil {
					logger.Warnw("key hook close failed", "error", err)
				}
			}()
		}
	}
	if cur.AutoStart && autostart.Supported {
		if err := autostart.Set(true); err != nil {
			logger.Warnw("auto-start registration failed", "error", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.controlLoop(gctx)
		return nil
	})
	if cfg.ControlAddr != "" {
		srv := control.New(a, events, logger.Named("control"))
		g.Go(func() error {
			if err := srv.ListenAndServe(gctx, cfg.ControlAddr); err != nil {
				return &SetupError{Component: "control server", Err: err}
			}
			return nil
		})
	}

	logger.Infow("ready",
		"hotkey", a.recordCombo(cur.Hotkey).String(),
		"replay", replay.String(),
		"toggle", cur.ToggleMode,
		"model", cur.Model,
		"inject", mode,
	)

	if tr == nil {
		return g.Wait()
	}
	errCh := make(chan error, 1)
	go func() {
		err := g.Wait()
		tr.Quit()
		errCh <- err
	}()
	tr.Run()
	cancel()
	return <-errCh
}

// controlLoop runs hotkey and tray actions one at a time.
func (a *App) controlLoop(ctx context.Context) {
	defer a.session.Close(context.Background())
	for {
		select {
		case <-ctx.Done():
			return
		case act := <-a.actions:
			a.perform(ctx, act)
		}
	}
}

func (a *App) perform(ctx context.Context, act hotkey.Action) {
	var err error
	switch act {
	case hotkey.ActionStart:
		err = a.session.Start()
	case hotkey.ActionStop:
		_, err = a.session.Stop(ctx)
	case hotkey.ActionToggle:
		_, err = a.session.Toggle(ctx)
	case hotkey.ActionReplay:
		_, err = a.session.Replay()
	}
	switch {
	case errors.Is(err, record.ErrNotIdle), errors.Is(err, record.ErrNotRecording):
		a.logger.Debugw("action ignored", "action", act.String(), "state", a.session.State().String())
	case err != nil:
		a.logger.Warnw("action failed", "action", act.String(), "error", err)
	}
}

// dispatch queues an action without blocking the key source.
func (a *App) dispatch(act hotkey.Action) {
	select {
	case a.actions <- act:
	default:
		a.logger.Warnw("action queue full, dropping", "action", act.String())
	}
}

// recordCombo parses the stored hotkey, falling back to the default binding.
func (a *App) recordCombo(desc string) hotkey.Combo {
	c, err := hotkey.ParseCombo(desc)
	if err == nil {
		return c
	}
	a.logger.Warnw("stored hotkey invalid, using default", "hotkey", desc, "error", err)
	c, _ = hotkey.ParseCombo(settings.Defaults().Hotkey)
	return c
}

type notifySink struct{ n *notify.Notifier }

func (notifySink) StateChanged(record.State) {}

func (s notifySink) Processed(r record.Result) {
	var ierr *inject.InjectionError
	switch {
	case errors.As(r.Err, &ierr):
		s.n.Notify("Open Whisper", "Could not type the transcription")
	case r.Err != nil:
		s.n.Notify("Open Whisper", "Transcription failed")
	}
}

func openSettings(cfg config.Config) (*settings.Store, error) {
	defaults := settings.Defaults()
	if cfg.Model != "" {
		defaults.Model = cfg.Model
	}
	return settings.Open(config.ResolveSettingsPath(&cfg), defaults)
}

func formatFromConfig(cfg config.Config) audio.Format {
	return audio.Format{
		SampleRate: cfg.SAMPLING_RATE,
		Channels:   cfg.Channels,
		ChunkSize:  cfg.ChunkFrames,
	}
}

func newEngine(cfg config.Config, httpClient *http.Client, logger *zap.SugaredLogger) (asr.Engine, error) {
	switch cfg.Engine {
	case "openai":
		return asr.NewOpenAIEngine(cfg.Token, cfg.OpenAIBaseURL, httpClient)
	default:
		return asr.NewHTTPEngine(cfg, httpClient, logger)
	}
}

func newHTTPClient(cfg config.Config) *http.Client {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if !cfg.VerifySSL {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if cfg.EnableHTTP2 {
		_ = http2.ConfigureTransport(tr)
	}
	return &http.Client{
		Transport: tr,
		Timeout:   time.Duration(cfg.RequestTimeout) * time.Second,
	}
}

// cleanupOldTempFiles removes scratch files left behind by a previous run.
func cleanupOldTempFiles(dir string, logger *zap.SugaredLogger) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warnw("scratch sweep: read dir failed", "dir", dir, "error", err)
		return 0
	}
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, utterance.ScratchPrefix) {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			logger.Warnw("scratch sweep: remove failed", "path", path, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Infow("scratch sweep", "dir", dir, "removed", removed)
	}
	return removed
}
