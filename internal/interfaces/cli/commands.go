package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/complyhq/compliance-engine/pkg/types/common"
)

func newGenerateCommand(configPath *string) *cobra.Command {
	var entityID string
	var all bool
	var year int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate obligations for one entity or the whole portfolio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (entityID == "") == (!all) {
				return fmt.Errorf("exactly one of --entity or --all is required")
			}
			if year < 0 {
				return fmt.Errorf("--year must not be negative")
			}

			rt, err := newRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			if all {
				result, err := rt.service.GenerateForAll(cmd.Context(), year)
				if err != nil {
					return err
				}
				return printJSON(result)
			}

			id := common.ID(entityID)
			if err := id.Validate(); err != nil {
				return fmt.Errorf("--entity must be a UUID: %w", err)
			}
			report, err := rt.service.GenerateForEntity(cmd.Context(), id, year)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
	cmd.Flags().StringVar(&entityID, "entity", "", "entity ID to generate for")
	cmd.Flags().BoolVar(&all, "all", false, "generate for every entity")
	cmd.Flags().IntVar(&year, "year", 0, "generate as of this year (default: current year)")
	return cmd
}

func newScoreCommand(configPath *string) *cobra.Command {
	var entityID string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the health score for an entity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := common.ID(entityID)
			if err := id.Validate(); err != nil {
				return fmt.Errorf("--entity must be a UUID: %w", err)
			}

			rt, err := newRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			report, err := rt.service.EntityHealth(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
	cmd.Flags().StringVar(&entityID, "entity", "", "entity ID to score")
	_ = cmd.MarkFlagRequired("entity")
	return cmd
}

func newObligationsCommand(configPath *string) *cobra.Command {
	var entityID string

	cmd := &cobra.Command{
		Use:   "obligations",
		Short: "List an entity's obligations with current urgency",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := common.ID(entityID)
			if err := id.Validate(); err != nil {
				return fmt.Errorf("--entity must be a UUID: %w", err)
			}

			rt, err := newRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			obs, err := rt.service.ObligationsForEntity(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(obs)
		},
	}
	cmd.Flags().StringVar(&entityID, "entity", "", "entity ID to list")
	_ = cmd.MarkFlagRequired("entity")
	return cmd
}

func newCostsCommand(configPath *string) *cobra.Command {
	var entityID string

	cmd := &cobra.Command{
		Use:   "costs",
		Short: "Roll up estimated fees for an entity's pending obligations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := common.ID(entityID)
			if err := id.Validate(); err != nil {
				return fmt.Errorf("--entity must be a UUID: %w", err)
			}

			rt, err := newRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			report, err := rt.service.EstimatedCosts(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
	cmd.Flags().StringVar(&entityID, "entity", "", "entity ID to roll up")
	_ = cmd.MarkFlagRequired("entity")
	return cmd
}

func newDeadlinesCommand(configPath *string) *cobra.Command {
	var days, limit int

	cmd := &cobra.Command{
		Use:   "deadlines",
		Short: "List upcoming deadlines across all entities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be positive")
			}

			rt, err := newRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			obs, err := rt.service.UpcomingDeadlines(cmd.Context(), days, limit)
			if err != nil {
				return err
			}
			return printJSON(obs)
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "look-ahead window in days")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum rows to return")
	return cmd
}
