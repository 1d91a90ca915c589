package scylla

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ueba-service/internal/bucketing"
	"ueba-service/internal/model"
	"ueba-service/internal/util"
)

// EventRepository reads complete event batches out of the bucketed Scylla
// tables. Collection agents write events sharded by event_bucket; a batch
// load walks every bucket of every table. Implements model.EventSource.
type EventRepository struct {
	client  *ScyllaClient
	buckets *bucketing.Manager
}

func NewEventRepository(client *ScyllaClient, buckets *bucketing.Manager) *EventRepository {
	return &EventRepository{
		client:  client,
		buckets: buckets,
	}
}

// LoadEvents scans the four event tables and the label table concurrently,
// one goroutine per table. Failures surface as model.ErrDataSource.
func (r *EventRepository) LoadEvents(ctx context.Context) (*model.EventLogs, error) {
	logs := &model.EventLogs{RedTeam: make(map[string]bool)}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := r.loadLogins(ctx)
		if err != nil {
			return err
		}
		logs.Logins = rows
		return nil
	})
	g.Go(func() error {
		rows, err := r.loadFileAccesses(ctx)
		if err != nil {
			return err
		}
		logs.FileAccesses = rows
		return nil
	})
	g.Go(func() error {
		rows, err := r.loadUsbUsage(ctx)
		if err != nil {
			return err
		}
		logs.UsbUses = rows
		return nil
	})
	g.Go(func() error {
		rows, err := r.loadEmails(ctx)
		if err != nil {
			return err
		}
		logs.Emails = rows
		return nil
	})
	g.Go(func() error {
		labels, err := r.loadRedTeam(ctx)
		if err != nil {
			return err
		}
		logs.RedTeam = labels
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	util.Info("event logs loaded from scylla",
		util.Int("logins", len(logs.Logins)),
		util.Int("file_accesses", len(logs.FileAccesses)),
		util.Int("usb_uses", len(logs.UsbUses)),
		util.Int("emails", len(logs.Emails)),
		util.Int("red_team_users", len(logs.RedTeam)),
	)
	return logs, nil
}

func (r *EventRepository) loadLogins(ctx context.Context) ([]model.LoginEvent, error) {
	var out []model.LoginEvent
	for b := 0; b < r.buckets.EventBuckets(); b++ {
		iter := r.client.Prepared.SelectLogins.WithContext(ctx).Bind(b).Iter()
		var user string
		var login, logout time.Time
		for iter.Scan(&user, &login, &logout) {
			out = append(out, model.LoginEvent{User: user, Login: login, Logout: logout})
		}
		if err := iter.Close(); err != nil {
			return nil, fmt.Errorf("%w: logins bucket %d: %v", model.ErrDataSource, b, err)
		}
	}
	return out, nil
}

func (r *EventRepository) loadFileAccesses(ctx context.Context) ([]model.FileAccessEvent, error) {
	var out []model.FileAccessEvent
	for b := 0; b < r.buckets.EventBuckets(); b++ {
		iter := r.client.Prepared.SelectFileAccesses.WithContext(ctx).Bind(b).Iter()
		var user, file string
		var at time.Time
		for iter.Scan(&user, &file, &at) {
			out = append(out, model.FileAccessEvent{User: user, File: file, AccessTime: at})
		}
		if err := iter.Close(); err != nil {
			return nil, fmt.Errorf("%w: file_accesses bucket %d: %v", model.ErrDataSource, b, err)
		}
	}
	return out, nil
}

func (r *EventRepository) loadUsbUsage(ctx context.Context) ([]model.UsbEvent, error) {
	var out []model.UsbEvent
	for b := 0; b < r.buckets.EventBuckets(); b++ {
		iter := r.client.Prepared.SelectUsbUsage.WithContext(ctx).Bind(b).Iter()
		var user, device string
		var plug, unplug time.Time
		for iter.Scan(&user, &device, &plug, &unplug) {
			out = append(out, model.UsbEvent{User: user, Device: device, PlugTime: plug, UnplugTime: unplug})
		}
		if err := iter.Close(); err != nil {
			return nil, fmt.Errorf("%w: usb_usage bucket %d: %v", model.ErrDataSource, b, err)
		}
	}
	return out, nil
}

func (r *EventRepository) loadEmails(ctx context.Context) ([]model.EmailEvent, error) {
	var out []model.EmailEvent
	for b := 0; b < r.buckets.EventBuckets(); b++ {
		iter := r.client.Prepared.SelectEmails.WithContext(ctx).Bind(b).Iter()
		var sender, recipient, subject string
		var at time.Time
		for iter.Scan(&sender, &recipient, &at, &subject) {
			out = append(out, model.EmailEvent{Sender: sender, Recipient: recipient, Time: at, Subject: subject})
		}
		if err := iter.Close(); err != nil {
			return nil, fmt.Errorf("%w: emails bucket %d: %v", model.ErrDataSource, b, err)
		}
	}
	return out, nil
}

func (r *EventRepository) loadRedTeam(ctx context.Context) (map[string]bool, error) {
	labels := make(map[string]bool)
	for b := 0; b < r.buckets.UserBuckets(); b++ {
		iter := r.client.Prepared.SelectRedTeam.WithContext(ctx).Bind(b).Iter()
		var user string
		for iter.Scan(&user) {
			labels[user] = true
		}
		if err := iter.Close(); err != nil {
			return nil, fmt.Errorf("%w: red_team_users bucket %d: %v", model.ErrDataSource, b, err)
		}
	}
	return labels, nil
}
