// Package notify shows desktop notifications over the freedesktop D-Bus
// interface.
package notify

import "time"

// Urgency levels as defined by the notification daemon protocol.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification is one desktop notification.
type Notification struct {
	Summary string
	Body    string
	Icon    string // icon name or image path
	// Expire is how long the notification stays up. Zero leaves it to the
	// daemon.
	Expire time.Duration
	// Replaces is the ID of a notification to update in place, 0 for a new one.
	Replaces uint32
	Urgency  Urgency
}

// Notifier sends notifications. An unavailable daemon yields a Notifier
// whose calls succeed and do nothing.
type Notifier interface {
	Notify(n Notification) (id uint32, err error)
	Dismiss(id uint32) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) (uint32, error) { return 0, nil }
func (nopNotifier) Dismiss(uint32) error                { return nil }

// expireMillis converts Expire to the protocol's timeout argument, where -1
// means the daemon default.
func expireMillis(d time.Duration) int32 {
	if d <= 0 {
		return -1
	}
	return int32(min(d.Milliseconds(), int64(1<<31-1)))
}
