package ports

import (
	"context"

	"github.com/samirrijal/meetpoint/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishPlanComputed(ctx context.Context, event *domain.PlanComputedEvent) error
}
