package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/samirrijal/meetpoint/internal/core/domain"
	"github.com/samirrijal/meetpoint/internal/pkg/config"
)

func planCmd(load func() (planFunc, *config.Config, error)) *cobra.Command {
	var (
		preferences string
		compact     bool
	)

	cmd := &cobra.Command{
		Use:   "plan <postcode1> <postcode2>",
		Short: "Compute a meetup plan and print it as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, cfg, err := load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if cfg != nil && cfg.Server.RequestTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Server.RequestTimeout)*time.Second)
				defer cancel()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}

			resp, err := plan(ctx, domain.PlanRequest{
				PostalCode1: args[0],
				PostalCode2: args[1],
				Preferences: preferences,
			})
			if err != nil {
				msg := err.Error()
				var de *domain.Error
				if errors.As(err, &de) && de.Message != "" {
					msg = de.Message
				}
				_ = json.NewEncoder(cmd.ErrOrStderr()).Encode(map[string]string{
					"error": msg,
					"code":  string(domain.KindOf(err)),
				})
				return fmt.Errorf("plan failed: %w", err)
			}

			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVar(&preferences, "preferences", "", "free-text preferences passed to the plan formatter")
	cmd.Flags().BoolVar(&compact, "compact", false, "print JSON on a single line")
	return cmd
}
