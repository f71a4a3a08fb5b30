// Package notify sends desktop notifications when an export finishes.
// It uses github.com/gen2brain/beeep for cross-platform notification support.
package notify

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/logging"
)

// Title is shown on every notification.
const Title = "Commerce Layer CLI"

// Notifier handles desktop notifications. Delivery failures are logged and otherwise ignored.
type Notifier struct {
	logger  *logging.Logger
	enabled bool
	mu      sync.RWMutex

	send func(title, message string) error
}

// NewNotifier creates a new notifier.
func NewNotifier(enabled bool, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Notifier{
		logger:  logger,
		enabled: enabled,
		send:    send,
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// ExportFinished announces a completed export, e.g. "Export of 120 orders is finished!".
// savedPath is appended when not empty.
func (n *Notifier) ExportFinished(message, savedPath string) {
	if !n.IsEnabled() {
		return
	}

	body := truncate(message, 120)
	if savedPath != "" {
		body += "\n" + shortenPath(savedPath)
	}

	if err := n.send(Title, body); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to send export finished notification")
	}
}

// ExportFailed announces an export that ended with errors.
func (n *Notifier) ExportFailed(exportID string, cause error) {
	if !n.IsEnabled() {
		return
	}

	message := fmt.Sprintf("Export %s failed:\n%s", exportID, truncate(cause.Error(), 100))
	if err := n.send(Title, message); err != nil {
		n.logger.Warn().Err(err).Str("export_id", exportID).Msg("Failed to send export failed notification")
	}
}

// send delivers through beeep:
// - Windows: toast notifications
// - macOS: NSUserNotificationCenter
// - Linux: D-Bus notifications
func send(title, message string) error {
	return beeep.Notify(title, message, "")
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// shortenPath abbreviates a long path for display in notifications.
func shortenPath(path string) string {
	const maxLen = 60

	if len(path) <= maxLen {
		return path
	}

	// Show ... + last 2 path components
	short := filepath.Join("...", filepath.Base(filepath.Dir(path)), filepath.Base(path))

	if vol := filepath.VolumeName(path); vol != "" && len(vol)+len(short)+1 <= maxLen {
		short = vol + string(filepath.Separator) + short
	}

	if len(short) > maxLen {
		return "..." + path[len(path)-(maxLen-3):]
	}

	return short
}
