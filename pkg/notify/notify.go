// Package notify defines the status surface the engine reports to: transient
// notifications and the persistent queued-skill indicator.
package notify

// Level is the severity of a notification
type Level string

// Notification levels
const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier is implemented by the host status bar
type Notifier interface {
	Notify(level Level, text string)
	SetIndicator(text string)
	ClearIndicator()
}

// Discard is a Notifier that drops everything
type Discard struct{}

// Notify implements Notifier
func (Discard) Notify(Level, string) {}

// SetIndicator implements Notifier
func (Discard) SetIndicator(string) {}

// ClearIndicator implements Notifier
func (Discard) ClearIndicator() {}
