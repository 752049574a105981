package chat

// Severity classifies a user-facing notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notifier is the toast-equivalent surface the pipeline reports through.
type Notifier interface {
	Notify(title, description string, severity Severity)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(title, description string, severity Severity) {}
