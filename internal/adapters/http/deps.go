package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/meetpoint/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Meetups *usecases.MeetupService
	NATS    *nats.Conn

	// Limiter backs the rate limiter. Nil keeps counters in process memory.
	Limiter fiber.Storage

	RateLimit      int           // requests per minute per IP on /v1/meetups and /graphql
	RequestTimeout time.Duration // per planning request
}

const (
	defaultRateLimit      = 30
	defaultRequestTimeout = 45 * time.Second
)

func (d *Dependencies) rateLimit() int {
	if d.RateLimit > 0 {
		return d.RateLimit
	}
	return defaultRateLimit
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout > 0 {
		return d.RequestTimeout
	}
	return defaultRequestTimeout
}
