package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/meetpoint/internal/core/domain"
	"github.com/samirrijal/meetpoint/internal/pkg/config"
	"github.com/samirrijal/meetpoint/internal/pkg/logging"
	"github.com/samirrijal/meetpoint/internal/planner"
)

// planFunc computes one plan. The real one is built from configuration.
type planFunc func(ctx context.Context, req domain.PlanRequest) (*domain.PlanResponse, error)

var logLevel string

// Execute runs the meetpoint CLI.
func Execute() error {
	return newRootCmd(configuredPlanner).Execute()
}

func newRootCmd(load func() (planFunc, *config.Config, error)) *cobra.Command {
	root := &cobra.Command{
		Use:           "meetpoint",
		Short:         "Plan a fair meetup between two postal codes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(planCmd(load))
	return root
}

// configuredPlanner loads configuration and wires the provider clients.
// Logs go to stderr so stdout stays valid JSON.
func configuredPlanner() (planFunc, *config.Config, error) {
	cfg, err := config.Load("meetpoint-cli")
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(os.Stderr, logLevel, "text")
	svc, err := planner.NewMeetupService(cfg, nil, logger)
	if err != nil {
		return nil, nil, err
	}

	return func(ctx context.Context, req domain.PlanRequest) (*domain.PlanResponse, error) {
		return svc.Plan(logging.WithContext(ctx, logger), req)
	}, cfg, nil
}
