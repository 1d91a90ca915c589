package features

import (
	"sort"
	"strings"
	"unicode/utf8"

	"ueba-service/internal/model"
)

// suspiciousKeywords is the fixed lexical watch list applied to email
// subjects, case-insensitively.
var suspiciousKeywords = []string{
	"confidential", "urgent", "password", "secret", "invoice", "transfer",
}

// SentimentScorer maps a subject line to a value in [-1, 1].
type SentimentScorer func(subject string) float64

// NeutralSentiment is the placeholder scorer: every subject scores 0. It is
// an explicit extension point, kept until a real scorer is integrated.
func NeutralSentiment(string) float64 { return 0 }

// ContentExtractor derives per-user lexical features from sent email.
type ContentExtractor struct {
	sentiment SentimentScorer
}

func NewContentExtractor(sentiment SentimentScorer) *ContentExtractor {
	if sentiment == nil {
		sentiment = NeutralSentiment
	}
	return &ContentExtractor{sentiment: sentiment}
}

// Extract classifies every email and aggregates the per-email features to
// per-sender means, sender identity stripped of its domain. Users who sent
// no email are absent from the result.
func (e *ContentExtractor) Extract(emails []model.EmailEvent) []model.ContentFeatureRow {
	type agg struct {
		keyword, length, sentiment float64
		count                      float64
	}
	perUser := make(map[string]*agg)

	for _, m := range emails {
		subject := strings.ToLower(m.Subject)

		flag := 0.0
		for _, kw := range suspiciousKeywords {
			if strings.Contains(subject, kw) {
				flag = 1.0
				break
			}
		}

		user := senderUser(m.Sender)
		a, ok := perUser[user]
		if !ok {
			a = &agg{}
			perUser[user] = a
		}
		a.keyword += flag
		a.length += float64(utf8.RuneCountInString(subject))
		a.sentiment += e.sentiment(m.Subject)
		a.count++
	}

	rows := make([]model.ContentFeatureRow, 0, len(perUser))
	for user, a := range perUser {
		rows = append(rows, model.ContentFeatureRow{
			User:        user,
			KeywordFlag: a.keyword / a.count,
			SubjectLen:  a.length / a.count,
			Sentiment:   a.sentiment / a.count,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].User < rows[j].User })
	return rows
}
