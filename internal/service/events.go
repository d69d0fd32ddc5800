package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const (
	// EventAssignmentCommitted is published after a plan is committed.
	EventAssignmentCommitted = "committed"
	// EventAssignmentReset is published after an assignment is reset.
	EventAssignmentReset = "reset"
)

// AssignmentEvent describes a lifecycle change of a task's review assignment.
type AssignmentEvent struct {
	Type       string    `json:"type"`
	TaskID     uint      `json:"task_id"`
	Mode       string    `json:"mode"`
	Pairs      int       `json:"pairs"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AssignmentEventPublisher broadcasts assignment lifecycle events to
// interested collaborators (notification senders, gradebook sync).
type AssignmentEventPublisher interface {
	Publish(ctx context.Context, event AssignmentEvent) error
}

type natsEventPublisher struct {
	conn        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
}

// NewNATSEventPublisher builds a publisher over an established NATS
// connection. Events go to "<subjectBase>.assignment.<type>".
func NewNATSEventPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) AssignmentEventPublisher {
	if subjectBase == "" {
		subjectBase = "peergrade"
	}

	return &natsEventPublisher{
		conn:        conn,
		subjectBase: subjectBase,
		logger:      logger.With().Str("component", "assignment_events").Logger(),
	}
}

func (p *natsEventPublisher) Publish(_ context.Context, event AssignmentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	subject := p.subjectBase + ".assignment." + event.Type
	if err := p.conn.Publish(subject, payload); err != nil {
		return err
	}

	p.logger.Debug().Str("subject", subject).Uint("task_id", event.TaskID).Msg("assignment event published")

	return nil
}
