package features

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ueba-service/internal/bucketing"
	"ueba-service/internal/model"
	"ueba-service/internal/util"
)

// BehavioralExtractor derives the per-user temporal/session feature table.
// The user universe is exactly the set of users seen in the login log; a
// user with logins but no other activity still gets a row with zero rates.
type BehavioralExtractor struct {
	partitioner *bucketing.Manager
}

func NewBehavioralExtractor(partitioner *bucketing.Manager) *BehavioralExtractor {
	return &BehavioralExtractor{partitioner: partitioner}
}

// userEvents is the per-user slice of the immutable event batch.
type userEvents struct {
	logins []model.LoginEvent
	files  []model.FileAccessEvent
	usb    []model.UsbEvent
	emails []model.EmailEvent
}

// Extract computes one FeatureRow per known user. Users are sharded by hash
// across workers; each worker writes only its own rows of the pre-sized
// output, so no locking is needed and output order is stable.
func (e *BehavioralExtractor) Extract(ctx context.Context, logs *model.EventLogs) ([]model.FeatureRow, error) {
	byUser := indexEvents(logs)

	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Strings(users)

	rowIndex := make(map[string]int, len(users))
	for i, u := range users {
		rowIndex[u] = i
	}

	rows := make([]model.FeatureRow, len(users))
	g, _ := errgroup.WithContext(ctx)
	for _, shard := range e.partitioner.PartitionUsers(users) {
		shard := shard
		g.Go(func() error {
			for _, user := range shard {
				rows[rowIndex[user]] = extractUser(user, byUser[user])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return rows, nil
}

// indexEvents groups events by user. Only users present in the login log
// become keys; activity of unknown users is ignored here (it still shows up
// in the entity graph).
func indexEvents(logs *model.EventLogs) map[string]*userEvents {
	byUser := make(map[string]*userEvents)
	for _, l := range logs.Logins {
		ue, ok := byUser[l.User]
		if !ok {
			ue = &userEvents{}
			byUser[l.User] = ue
		}
		ue.logins = append(ue.logins, l)
	}
	for _, f := range logs.FileAccesses {
		if ue, ok := byUser[f.User]; ok {
			ue.files = append(ue.files, f)
		}
	}
	for _, u := range logs.UsbUses {
		if ue, ok := byUser[u.User]; ok {
			ue.usb = append(ue.usb, u)
		}
	}
	for _, m := range logs.Emails {
		if ue, ok := byUser[senderUser(m.Sender)]; ok {
			ue.emails = append(ue.emails, m)
		}
	}
	return byUser
}

func extractUser(user string, ev *userEvents) model.FeatureRow {
	row := model.FeatureRow{User: user}

	var loginHours, logoutHours float64
	for _, l := range ev.logins {
		loginHours += float64(l.Login.Hour())
		logoutHours += float64(l.Logout.Hour())
	}
	n := float64(len(ev.logins))
	row.MeanLoginHour = loginHours / n
	row.MeanLogoutHour = logoutHours / n

	fileDays := make(map[string]int)
	for _, f := range ev.files {
		fileDays[dateKey(f.AccessTime)]++
	}
	row.FilesPerDay = meanPerDay(fileDays)

	usbDays := make(map[string]int)
	for _, u := range ev.usb {
		usbDays[dateKey(u.PlugTime)]++
	}
	row.UsbPerDay = meanPerDay(usbDays)

	emailDays := make(map[string]int)
	for _, m := range ev.emails {
		emailDays[dateKey(m.Time)]++
	}
	row.EmailsPerDay = meanPerDay(emailDays)

	row.OutOfSessionAccess = float64(countOutOfSession(user, ev))

	return row
}

// countOutOfSession counts file accesses that fall inside no [login, logout]
// interval of the user. Containment is closed on both ends.
func countOutOfSession(user string, ev *userEvents) int {
	if len(ev.logins) == 0 && len(ev.files) > 0 {
		// Expected edge case, not an error: with no sessions every access
		// is out of session.
		util.Warn("user has file accesses but no login sessions",
			util.String("user", user),
			util.Int("file_accesses", len(ev.files)),
		)
		return len(ev.files)
	}

	count := 0
	for _, f := range ev.files {
		contained := false
		for _, l := range ev.logins {
			if !f.AccessTime.Before(l.Login) && !f.AccessTime.After(l.Logout) {
				contained = true
				break
			}
		}
		if !contained {
			count++
		}
	}
	return count
}

// meanPerDay is the mean of per-date counts over observed dates; zero events
// means a rate of 0, never a missing value.
func meanPerDay(perDate map[string]int) float64 {
	if len(perDate) == 0 {
		return 0
	}
	total := 0
	for _, c := range perDate {
		total += c
	}
	return float64(total) / float64(len(perDate))
}

// dateKey buckets a timestamp to its UTC calendar date.
func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// senderUser strips the domain off an email-like sender identity.
func senderUser(sender string) string {
	if i := strings.IndexByte(sender, '@'); i >= 0 {
		return sender[:i]
	}
	return sender
}
