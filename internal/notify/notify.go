// Package notify plays recording cues and shows desktop notifications.
package notify

import (
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

// Cue frequencies and length for recording start and stop.
const (
	ArmedFreq    = 1200
	DisarmedFreq = 800
	CueMillis    = 120
)

// Notifier plays cues and notifications. Failures are logged only.
type Notifier struct {
	cues          bool
	notifications bool
	logger        *zap.SugaredLogger
	beep          func(freq float64, millis int) error
	notify        func(title, message, icon string) error
}

// New returns a Notifier. cues enables the start/stop beeps and
// notifications enables desktop popups.
func New(cues, notifications bool, logger *zap.SugaredLogger) *Notifier {
	return &Notifier{
		cues:          cues,
		notifications: notifications,
		logger:        logger,
		beep:          func(freq float64, millis int) error { return beeep.Beep(freq, millis) },
		notify:        func(title, message, icon string) error { return beeep.Notify(title, message, icon) },
	}
}

// Armed is played when recording starts.
func (n *Notifier) Armed() { n.play(ArmedFreq) }

// Disarmed is played when recording stops.
func (n *Notifier) Disarmed() { n.play(DisarmedFreq) }

func (n *Notifier) play(freq float64) {
	if n == nil || !n.cues {
		return
	}
	if err := n.beep(freq, CueMillis); err != nil {
		n.logger.Debugw("beep failed", "freq", freq, "error", err)
	}
}

// Notify shows a desktop notification.
func (n *Notifier) Notify(title, message string) {
	if n == nil || !n.notifications {
		return
	}
	if err := n.notify(title, message, ""); err != nil {
		n.logger.Debugw("notification failed", "error", err)
	}
}
