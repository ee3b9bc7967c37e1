package notify

import "log"

// Notifier is the fire-and-forget user notification collaborator (toasts in
// the web client). It never blocks and nothing consumes its outcome.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to the process log. The hosted frontend
// renders these as toasts; server-side they are log lines.
type LogNotifier struct{}

// Success logs a success notification.
func (LogNotifier) Success(msg string) {
	log.Printf("[Notify] success: %s", msg)
}

// Error logs an error notification.
func (LogNotifier) Error(msg string) {
	log.Printf("[Notify] error: %s", msg)
}
