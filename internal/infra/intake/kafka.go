// Package intake consumes risk tickets from a Kafka topic and hands them to
// the scheduler. Offsets are committed only after a message has been fully
// handled, so a crash replays unhandled tickets on restart.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"riskrouter/internal/domain/tickets"
	"riskrouter/internal/usecase"
)

// ticketMessage is the wire shape produced by the upstream risk pipeline.
type ticketMessage struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Customer struct {
		CustomerID     string  `json:"customer_id"`
		Name           string  `json:"name"`
		Tier           string  `json:"tier"`
		Industry       string  `json:"industry"`
		MRR            float64 `json:"mrr"`
		SupportTickets int     `json:"support_tickets"`
		TenureMonths   int     `json:"tenure_months"`
	} `json:"customer"`
	CreatedAt         time.Time `json:"created_at"`
	SLAHoursRemaining *float64  `json:"sla_hours_remaining,omitempty"`
	HealthScore       *float64  `json:"health_score,omitempty"`
}

type Consumer struct {
	reader    *kafka.Reader
	scheduler *usecase.Scheduler
	logger    *log.Logger
}

func NewConsumer(brokers []string, topic, groupID string, scheduler *usecase.Scheduler, logger *log.Logger) *Consumer {
	if logger == nil {
		logger = log.Default()
	}
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		scheduler: scheduler,
		logger:    logger,
	}
}

// Run consumes until the context is canceled. A malformed message is logged
// and committed so it cannot wedge the partition; a scheduler error leaves
// the offset uncommitted for redelivery.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var wire ticketMessage
		if err := json.Unmarshal(msg.Value, &wire); err != nil {
			c.logger.Printf("skipping malformed message offset=%d: %v", msg.Offset, err)
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return err
			}
			continue
		}

		result, err := c.scheduler.Submit(ctx, toSubmission(wire))
		if err != nil {
			c.logger.Printf("submit failed offset=%d ticket=%s: %v", msg.Offset, wire.ID, err)
			continue
		}
		if result.Suppressed {
			c.logger.Printf("intake suppressed ticket=%s customer=%s", result.TicketID, wire.Customer.CustomerID)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func toSubmission(wire ticketMessage) usecase.TicketSubmission {
	return usecase.TicketSubmission{
		Ticket: tickets.Ticket{
			ID:       wire.ID,
			Type:     tickets.RiskType(wire.Type),
			Severity: tickets.ParseSeverity(wire.Severity),
			Message:  wire.Message,
			Customer: tickets.CustomerProfile{
				CustomerID:     wire.Customer.CustomerID,
				Name:           wire.Customer.Name,
				Tier:           tickets.Tier(wire.Customer.Tier),
				Industry:       wire.Customer.Industry,
				MRR:            wire.Customer.MRR,
				SupportTickets: wire.Customer.SupportTickets,
				TenureMonths:   wire.Customer.TenureMonths,
			},
			CreatedAt: wire.CreatedAt,
		},
		SLAHoursRemaining: wire.SLAHoursRemaining,
		HealthScore:       wire.HealthScore,
	}
}
