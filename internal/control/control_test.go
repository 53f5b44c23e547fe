package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"openwhisper/internal/history"
	"openwhisper/internal/record"
	"openwhisper/internal/settings"
	"openwhisper/internal/transcript"
)

type fakeController struct {
	mu        sync.Mutex
	recording bool
	cached    string
	shutdown  chan struct{}
	entries   []history.Entry
	replayed  []string
	st        settings.Settings
	capturing bool
}

func newFakeController() *fakeController {
	return &fakeController{shutdown: make(chan struct{}), st: settings.Defaults()}
}

func (f *fakeController) StartRecording() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recording {
		return record.ErrNotIdle
	}
	f.recording = true
	return nil
}

func (f *fakeController) StopRecording(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.recording {
		return record.ErrNotRecording
	}
	f.recording = false
	f.cached = "hello"
	return nil
}

func (f *fakeController) Replay() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached == "" {
		return false, nil
	}
	f.replayed = append(f.replayed, f.cached)
	return true, nil
}

func (f *fakeController) Shutdown() { close(f.shutdown) }

func (f *fakeController) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := "idle"
	if f.recording {
		st = "recording"
	}
	return Status{State: st, Model: f.st.Model, Hotkey: f.st.Hotkey, HasReplay: f.cached != ""}
}

func (f *fakeController) History() []history.Entry { return f.entries }

func (f *fakeController) ClearHistory() error {
	f.entries = nil
	return nil
}

func (f *fakeController) ReplayHistory(id string) error {
	for _, e := range f.entries {
		if e.ID == id {
			f.replayed = append(f.replayed, e.Text)
			return nil
		}
	}
	return history.ErrNotFound
}

func (f *fakeController) Settings() settings.Settings { return f.st }

func (f *fakeController) UpdateSettings(p SettingsPatch) (settings.Settings, error) {
	if p.Model != nil {
		if !settings.ValidModel(*p.Model) {
			return f.st, fmt.Errorf("%w: unknown model %q", ErrInvalid, *p.Model)
		}
		f.st.Model = *p.Model
	}
	if p.ToggleMode != nil {
		f.st.ToggleMode = *p.ToggleMode
	}
	return f.st, nil
}

func (f *fakeController) StartHotkeyCapture() error {
	if f.capturing {
		return errors.New("already capturing")
	}
	f.capturing = true
	return nil
}

func (f *fakeController) StopHotkeyCapture() (string, error) {
	f.capturing = false
	return "alt+ctrl+space", nil
}

func newTestServer(t *testing.T) (*Server, *fakeController, *Events) {
	ctl := newFakeController()
	logger := zaptest.NewLogger(t).Sugar()
	events := NewEvents(logger)
	return New(ctl, events, logger), ctl, events
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func TestServerRunning(t *testing.T) {
	s, _, _ := newTestServer(t)
	code, body := do(t, s.Handler(), http.MethodGet, "/start_recording", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]interface{}{"status": "server_running"}, body)
}

func TestRecordingEndpoints(t *testing.T) {
	s, ctl, _ := newTestServer(t)
	h := s.Handler()

	_, body := do(t, h, http.MethodPost, "/stop_recording", "")
	assert.Equal(t, map[string]interface{}{"success": false}, body)

	_, body = do(t, h, http.MethodPost, "/replay", "")
	assert.Equal(t, false, body["success"])

	_, body = do(t, h, http.MethodPost, "/start_recording", "")
	assert.Equal(t, true, body["success"])
	_, body = do(t, h, http.MethodPost, "/start_recording", "")
	assert.Equal(t, false, body["success"])

	_, body = do(t, h, http.MethodPost, "/stop_recording", "")
	assert.Equal(t, true, body["success"])

	_, body = do(t, h, http.MethodPost, "/replay", "")
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []string{"hello"}, ctl.replayed)

	_, body = do(t, h, http.MethodGet, "/status", "")
	assert.Equal(t, "idle", body["state"])
	assert.Equal(t, true, body["has_replay"])
}

func TestShutdown(t *testing.T) {
	s, ctl, _ := newTestServer(t)
	_, body := do(t, s.Handler(), http.MethodPost, "/shutdown", "")
	assert.Equal(t, map[string]interface{}{"success": true}, body)
	select {
	case <-ctl.shutdown:
	case <-time.After(time.Second):
		t.Fatal("shutdown not requested")
	}
}

func TestHistoryEndpoints(t *testing.T) {
	s, ctl, _ := newTestServer(t)
	ctl.entries = []history.Entry{{ID: "a1", Text: "from history"}}
	h := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var list []history.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	code, _ := do(t, h, http.MethodPost, "/history/zz/replay", "")
	assert.Equal(t, http.StatusNotFound, code)
	_, body := do(t, h, http.MethodPost, "/history/a1/replay", "")
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []string{"from history"}, ctl.replayed)

	_, body = do(t, h, http.MethodDelete, "/history", "")
	assert.Equal(t, true, body["success"])
	assert.Empty(t, ctl.entries)
}

func TestSettingsEndpoints(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.Handler()

	_, body := do(t, h, http.MethodGet, "/settings", "")
	assert.Equal(t, "base.en", body["model"])

	code, body := do(t, h, http.MethodPut, "/settings", `{"model":"small.en","toggle_mode":true}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "small.en", body["model"])
	assert.Equal(t, true, body["toggle_mode"])

	code, _ = do(t, h, http.MethodPut, "/settings", `{"model":"huge"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, h, http.MethodPut, "/settings", `{`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHotkeyCaptureEndpoints(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.Handler()

	_, body := do(t, h, http.MethodPost, "/hotkey/record/start", "")
	assert.Equal(t, true, body["success"])
	code, _ := do(t, h, http.MethodPost, "/hotkey/record/start", "")
	assert.Equal(t, http.StatusConflict, code)
	_, body = do(t, h, http.MethodPost, "/hotkey/record/stop", "")
	assert.Equal(t, "alt+ctrl+space", body["hotkey"])
}

func TestEventsWebsocket(t *testing.T) {
	s, _, events := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return events.Clients() == 1 }, time.Second, 10*time.Millisecond)

	events.StateChanged(record.StateRecording)
	events.Processed(record.Result{Text: "hello", Verdict: transcript.VerdictAccepted})

	var ev Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "state", ev.Type)
	assert.Equal(t, "recording", ev.State)

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "result", ev.Type)
	assert.Equal(t, "hello", ev.Text)
	assert.Equal(t, "accepted", ev.Verdict)

	events.Close()
	assert.Equal(t, 0, events.Clients())
}
