package speech

import (
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

// DesktopAlert raises a desktop notification with a sound. Failures are logged only.
type DesktopAlert struct {
	title string
	log   *zap.Logger
	send  func(title, message string) error
}

// NewDesktopAlert returns an alert using the host notification service.
func NewDesktopAlert(title string, log *zap.Logger) *DesktopAlert {
	if log == nil {
		log = zap.NewNop()
	}
	return &DesktopAlert{
		title: title,
		log:   log,
		send: func(title, message string) error {
			return beeep.Alert(title, message, "")
		},
	}
}

// Notify shows message. Safe to call on a nil receiver.
func (a *DesktopAlert) Notify(message string) {
	if a == nil {
		return
	}
	if err := a.send(a.title, message); err != nil {
		a.log.Warn("desktop alert failed", zap.Error(err))
	}
}
