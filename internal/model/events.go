package model

import (
	"context"
	"time"
)

// -------------------- RAW EVENT MODELS --------------------

// LoginEvent is one authenticated session interval for a user.
type LoginEvent struct {
	User   string    `json:"user" db:"user_id"`
	Login  time.Time `json:"login" db:"login_time"`
	Logout time.Time `json:"logout" db:"logout_time"` // always after Login
}

// FileAccessEvent records a user touching a file at a point in time.
type FileAccessEvent struct {
	User       string    `json:"user" db:"user_id"`
	File       string    `json:"file" db:"file_id"`
	AccessTime time.Time `json:"access_time" db:"access_time"`
}

// UsbEvent records a removable device plug/unplug window for a user.
type UsbEvent struct {
	User       string    `json:"user" db:"user_id"`
	Device     string    `json:"device" db:"device_id"`
	PlugTime   time.Time `json:"plug_time" db:"plug_time"`
	UnplugTime time.Time `json:"unplug_time" db:"unplug_time"`
}

// EmailEvent records one sent email. Sender is email-like
// ("u123@company.com"); feature extraction strips the domain.
type EmailEvent struct {
	Sender    string    `json:"sender" db:"sender"`
	Recipient string    `json:"recipient" db:"recipient"`
	Time      time.Time `json:"time" db:"sent_time"`
	Subject   string    `json:"subject" db:"subject"`
}

// EventLogs is the full immutable batch of captured activity the pipeline
// runs over. RedTeam is the optional ground-truth label set; it is used for
// evaluation and risk flagging only, never for training.
type EventLogs struct {
	Logins       []LoginEvent
	FileAccesses []FileAccessEvent
	UsbUses      []UsbEvent
	Emails       []EmailEvent
	RedTeam      map[string]bool
}

// IsRedTeam reports whether the user carries a ground-truth label.
func (l *EventLogs) IsRedTeam(user string) bool {
	return l.RedTeam[user]
}

// -------------------- SOURCE INTERFACE --------------------

// EventSource loads a complete batch of event logs from a backing store
// (local CSV directory, ScyllaDB, ...).
type EventSource interface {
	LoadEvents(ctx context.Context) (*EventLogs, error)
}
