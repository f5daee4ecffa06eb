package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/meetpoint/internal/core/domain"
)

// SubjectPlanComputed carries one message per completed plan.
const SubjectPlanComputed = "meetup.plan.computed"

// Publisher implements ports.EventPublisher using core NATS.
type Publisher struct {
	conn *nats.Conn
}

// Connect dials NATS with reconnects enabled.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("meetpoint"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// NewPublisher publishes on an existing connection.
func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// PublishPlanComputed announces a finished plan. Delivery is fire-and-forget.
func (p *Publisher) PublishPlanComputed(ctx context.Context, event *domain.PlanComputedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal plan event: %w", err)
	}
	msg := nats.NewMsg(SubjectPlanComputed)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, event.PlanID)
	return p.conn.PublishMsg(msg)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
