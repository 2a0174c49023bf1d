package notify

import (
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"
)

// Notifier delivers user-facing notifications. Delivery is best effort;
// callers treat failures as non-fatal.
type Notifier interface {
	Notify(title, message string) error
	Enabled() bool
}

// DesktopNotifier shows notifications through the desktop notification
// daemon (notify-send). It is gated on an explicit permission flag, mirroring
// the permission grant the notification surface requires.
type DesktopNotifier struct {
	enabled bool
	logger  zerolog.Logger
}

// NewDesktopNotifier creates a DesktopNotifier.
func NewDesktopNotifier(enabled bool, logger zerolog.Logger) *DesktopNotifier {
	return &DesktopNotifier{
		enabled: enabled,
		logger:  logger,
	}
}

// Enabled reports whether notification permission was granted.
func (n *DesktopNotifier) Enabled() bool {
	return n.enabled
}

// Notify shows a notification if permission was granted.
func (n *DesktopNotifier) Notify(title, message string) error {
	if !n.enabled {
		return nil
	}

	if _, err := exec.LookPath("notify-send"); err != nil {
		return fmt.Errorf("notify-send not found: %w", err)
	}

	if err := exec.Command("notify-send", "--app-name=AuthentiCare", title, message).Run(); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	n.logger.Debug().Str("title", title).Msg("Notification delivered")
	return nil
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(title, message string) error { return nil }

func (NopNotifier) Enabled() bool { return false }
