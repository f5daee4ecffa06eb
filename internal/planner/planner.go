// Package planner wires configuration into the planning service. It is shared by
// the API server and the command-line client.
package planner

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/meetpoint/internal/adapters/openai"
	"github.com/samirrijal/meetpoint/internal/adapters/osrm"
	"github.com/samirrijal/meetpoint/internal/adapters/postcodes"
	"github.com/samirrijal/meetpoint/internal/adapters/tavily"
	"github.com/samirrijal/meetpoint/internal/core/ports"
	"github.com/samirrijal/meetpoint/internal/core/usecases"
	"github.com/samirrijal/meetpoint/internal/pkg/config"
	"github.com/samirrijal/meetpoint/internal/pkg/planschema"
)

// NewMeetupService builds the provider clients from cfg. events may be nil.
func NewMeetupService(cfg *config.Config, events ports.EventPublisher, logger *slog.Logger) (*usecases.MeetupService, error) {
	policy, err := planschema.ParsePolicy(cfg.Formatter.Validation)
	if err != nil {
		return nil, fmt.Errorf("formatter policy: %w", err)
	}

	geocoder := postcodes.New(cfg.Providers.Postcodes.BaseURL, cfg.Providers.Postcodes.TimeoutDuration())
	router := osrm.New(cfg.Providers.Routing.BaseURL, cfg.Providers.Routing.TimeoutDuration())
	search := tavily.New(tavily.Options{
		BaseURL: cfg.Search.BaseURL,
		APIKey:  cfg.Search.APIKey,
		Timeout: time.Duration(cfg.Search.Timeout) * time.Second,
	})
	formatter := openai.New(openai.Options{
		BaseURL: cfg.Formatter.BaseURL,
		APIKey:  cfg.Formatter.APIKey,
		Model:   cfg.Formatter.Model,
		Timeout: time.Duration(cfg.Formatter.Timeout) * time.Second,
		Policy:  policy,
		Logger:  logger,
	})

	return usecases.NewMeetupService(geocoder, router, search, formatter, events), nil
}
