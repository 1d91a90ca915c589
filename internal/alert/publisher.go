package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ueba-service/internal/client"
	"ueba-service/internal/model"
	"ueba-service/internal/util"
)

// HighRiskAlert is the message published to the alerts topic for every user
// the risk builder flags.
type HighRiskAlert struct {
	RunID               string    `json:"run_id"`
	User                string    `json:"user"`
	IsolationScore      float64   `json:"isolation_score"`
	BoundaryScore       float64   `json:"boundary_score"`
	ReconstructionScore float64   `json:"reconstruction_score"`
	MaxScore            float64   `json:"max_score"`
	Threshold           float64   `json:"threshold"`
	IsRedTeam           bool      `json:"is_red_team"`
	EmittedAt           time.Time `json:"emitted_at"`
}

// Publisher fans out high-risk findings to Kafka.
type Publisher struct {
	producer *client.KafkaProducer
	topic    string
}

func NewPublisher(producer *client.KafkaProducer, topic string) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
	}
}

// PublishHighRisk emits one alert per user whose max detector score exceeds
// the threshold or who carries a red-team label. The user ID keys the
// message so alerts for one user stay ordered within a partition.
func (p *Publisher) PublishHighRisk(ctx context.Context, runID string, scores []model.ScoreRow, threshold float64) error {
	published := 0
	for i := range scores {
		s := &scores[i]
		if s.MaxScore() <= threshold && !s.IsRedTeam {
			continue
		}

		alert := HighRiskAlert{
			RunID:               runID,
			User:                s.User,
			IsolationScore:      s.IsolationScore,
			BoundaryScore:       s.BoundaryScore,
			ReconstructionScore: s.ReconstructionScore,
			MaxScore:            s.MaxScore(),
			Threshold:           threshold,
			IsRedTeam:           s.IsRedTeam,
			EmittedAt:           time.Now().UTC(),
		}

		value, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("failed to marshal alert for %s: %w", s.User, err)
		}

		headers := map[string]string{"run_id": runID}
		if err := p.producer.ProduceMessage(ctx, p.topic, []byte(s.User), value, headers); err != nil {
			return fmt.Errorf("failed to publish alert for %s: %w", s.User, err)
		}
		published++
	}

	util.Info("high risk alerts published",
		util.String("run_id", runID),
		util.String("topic", p.topic),
		util.Int("alerts", published),
	)
	return nil
}
