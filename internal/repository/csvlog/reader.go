package csvlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"ueba-service/internal/config"
	"ueba-service/internal/model"
	"ueba-service/internal/util"
)

// File names expected inside the log directory. The red-team file is
// optional; every other file must be present.
const (
	loginsFile     = "logins.csv"
	fileAccessFile = "file_access.csv"
	usbUsageFile   = "usb_usage.csv"
	emailsFile     = "emails.csv"
	redTeamFile    = "red_team_users.csv"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Reader loads a full event batch from a directory of CSV logs. It
// implements model.EventSource.
type Reader struct {
	dir string
}

func NewReader(cfg *config.Config) *Reader {
	return &Reader{dir: cfg.Data.LogDir}
}

// LoadEvents reads all five log files. A missing mandatory file surfaces as
// model.ErrDataSource; malformed headers or fields surface as
// model.ErrSchema with the file and line that failed.
func (r *Reader) LoadEvents(ctx context.Context) (*model.EventLogs, error) {
	logs := &model.EventLogs{RedTeam: make(map[string]bool)}

	if err := r.readFile(ctx, loginsFile, []string{"user", "login", "logout"}, func(line int, rec []string) error {
		login, err := parseTime(rec[1])
		if err != nil {
			return fieldErr(loginsFile, line, "login", err)
		}
		logout, err := parseTime(rec[2])
		if err != nil {
			return fieldErr(loginsFile, line, "logout", err)
		}
		logs.Logins = append(logs.Logins, model.LoginEvent{User: rec[0], Login: login, Logout: logout})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(ctx, fileAccessFile, []string{"user", "file", "access_time"}, func(line int, rec []string) error {
		at, err := parseTime(rec[2])
		if err != nil {
			return fieldErr(fileAccessFile, line, "access_time", err)
		}
		logs.FileAccesses = append(logs.FileAccesses, model.FileAccessEvent{User: rec[0], File: rec[1], AccessTime: at})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(ctx, usbUsageFile, []string{"user", "device", "plug_time", "unplug_time"}, func(line int, rec []string) error {
		plug, err := parseTime(rec[2])
		if err != nil {
			return fieldErr(usbUsageFile, line, "plug_time", err)
		}
		unplug, err := parseTime(rec[3])
		if err != nil {
			return fieldErr(usbUsageFile, line, "unplug_time", err)
		}
		logs.UsbUses = append(logs.UsbUses, model.UsbEvent{User: rec[0], Device: rec[1], PlugTime: plug, UnplugTime: unplug})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(ctx, emailsFile, []string{"sender", "recipient", "time", "subject"}, func(line int, rec []string) error {
		at, err := parseTime(rec[2])
		if err != nil {
			return fieldErr(emailsFile, line, "time", err)
		}
		logs.Emails = append(logs.Emails, model.EmailEvent{Sender: rec[0], Recipient: rec[1], Time: at, Subject: rec[3]})
		return nil
	}); err != nil {
		return nil, err
	}

	// Ground-truth labels are optional; a missing file means no labels.
	if _, err := os.Stat(filepath.Join(r.dir, redTeamFile)); os.IsNotExist(err) {
		util.Warn("red team label file missing, continuing without labels",
			util.String("file", filepath.Join(r.dir, redTeamFile)))
	} else if err := r.readFile(ctx, redTeamFile, []string{"user"}, func(line int, rec []string) error {
		logs.RedTeam[rec[0]] = true
		return nil
	}); err != nil {
		return nil, err
	}

	util.Info("event logs loaded from csv",
		util.String("dir", r.dir),
		util.Int("logins", len(logs.Logins)),
		util.Int("file_accesses", len(logs.FileAccesses)),
		util.Int("usb_uses", len(logs.UsbUses)),
		util.Int("emails", len(logs.Emails)),
		util.Int("red_team_users", len(logs.RedTeam)),
	)
	return logs, nil
}

// readFile streams one CSV file, validating the header and invoking fn once
// per data row.
func (r *Reader) readFile(ctx context.Context, name string, header []string, fn func(line int, rec []string) error) error {
	path := filepath.Join(r.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", model.ErrDataSource, path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(header)
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if err == io.EOF {
		return fmt.Errorf("%w: %s is empty", model.ErrSchema, name)
	}
	if err != nil {
		return fmt.Errorf("%w: %s header: %v", model.ErrSchema, name, err)
	}
	for i, col := range header {
		if first[i] != col {
			return fmt.Errorf("%w: %s column %d is %q, want %q", model.ErrSchema, name, i, first[i], col)
		}
	}

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s line %d: %v", model.ErrSchema, name, line, err)
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func fieldErr(file string, line int, field string, err error) error {
	return fmt.Errorf("%w: %s line %d field %s: %v", model.ErrSchema, file, line, field, err)
}
