package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/covweb/pkg/model"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List or create events",
	}
	cmd.AddCommand(newEventsListCmd(), newEventsCreateCmd())
	return cmd
}

func newEventsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List events",
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := api.ListEvents(cmd.Context())
			if err != nil {
				return fmt.Errorf("list events: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No events found.")
				return nil
			}

			fmt.Fprintf(out, "%-40s  %s\n", "NAME", "CREATED")
			fmt.Fprintf(out, "%-40s  %s\n", "----", "-------")
			for _, ev := range events {
				created := "-"
				if !ev.CreatedAt.IsZero() {
					created = ev.CreatedAt.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(out, "%-40s  %s\n", ev.Name, created)
			}
			return nil
		},
	}
}

func newEventsCreateCmd() *cobra.Command {
	var (
		force     bool
		inspector string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an event",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return fmt.Errorf("event name is required")
			}

			res, err := api.CreateEvent(cmd.Context(), model.CreateEventRequest{
				Name:        name,
				InspectorID: inspector,
				ForceCreate: force,
			})
			if err != nil {
				return fmt.Errorf("create event: %w", err)
			}

			out := cmd.OutOrStdout()
			switch res.Status {
			case model.EventStatusSuccess:
				fmt.Fprintln(out, res.Message)
				return nil
			case model.EventStatusSimilar:
				fmt.Fprintln(out, res.Message)
				for _, s := range res.SimilarEvents {
					fmt.Fprintf(out, "  %-40s  %.0f%%\n", s.Name, s.Similarity*100)
				}
				fmt.Fprintln(out, "Use --force to create it anyway.")
				return nil
			default:
				return fmt.Errorf("create event: %s", res.Message)
			}
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Create even if similar events exist")
	cmd.Flags().StringVar(&inspector, "inspector", "", "Inspector ID recorded as the creator")

	return cmd
}
