//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
)

const (
	busName   = "org.freedesktop.Notifications"
	busPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	appName   = "Aurora"
	desktopID = "aurora"
)

type busNotifier struct {
	obj dbus.BusObject
}

// New connects to the session bus. Without one it returns a no-op Notifier.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nopNotifier{}, nil //nolint:nilerr // headless sessions have no bus
	}
	return &busNotifier{obj: conn.Object(busName, busPath)}, nil
}

func (b *busNotifier) Notify(n Notification) (uint32, error) {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(desktopID),
	}
	// app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout
	call := b.obj.Call(busName+".Notify", 0,
		appName, n.Replaces, n.Icon, n.Summary, n.Body, []string{}, hints, expireMillis(n.Expire))
	if call.Err != nil {
		return 0, call.Err
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (b *busNotifier) Dismiss(id uint32) error {
	return b.obj.Call(busName+".CloseNotification", 0, id).Err
}
