package nats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// TournamentEvent is the JSON payload published on tournament lifecycle
// transitions and seating runs.
type TournamentEvent struct {
	TournamentID uint      `json:"tournament_id"`
	Event        string    `json:"event"`
	Status       string    `json:"status,omitempty"`
	TablesCount  int       `json:"tables_count,omitempty"`
	PlayersCount int       `json:"players_count,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

const (
	EventStarted     = "started"
	EventLateRegDone = "late_registration_closed"
	EventCompleted   = "completed"
	EventDeleted     = "deleted"
	EventTablesDrawn = "tables_assigned"
)

// Publisher pushes tournament events to JetStream. A nil Publisher is a
// no-op so the service can run without a broker.
type Publisher struct {
	js nats.JetStreamContext
}

func NewPublisher(js nats.JetStreamContext) *Publisher {
	return &Publisher{js: js}
}

func (p *Publisher) Publish(event TournamentEvent) error {
	if p == nil || p.js == nil {
		return nil
	}
	event.Timestamp = time.Now()
	subject := fmt.Sprintf("club.tournament.%d", event.TournamentID)

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event for tournament %d: %w", event.TournamentID, err)
	}

	if _, err := p.js.Publish(subject, messageBytes); err != nil {
		return fmt.Errorf("failed to publish event to JetStream for tournament %d: %w", event.TournamentID, err)
	}

	return nil
}
