package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/covweb/pkg/model"
)

func newMissingCmd() *cobra.Command {
	var event string

	cmd := &cobra.Command{
		Use:   "missing",
		Short: "List inspections without a video",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := api.MissingVideos(cmd.Context())
			if err != nil {
				return fmt.Errorf("list missing videos: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "All inspections have videos attached!")
				return nil
			}

			fmt.Fprintf(out, "%-8s  %-20s  %-12s  %s\n", "VAN", "DATE", "INSPECTOR", "EVENT")
			fmt.Fprintf(out, "%-8s  %-20s  %-12s  %s\n", "---", "----", "---------", "-----")
			shown := 0
			for _, rec := range recs {
				if event != "" && rec.EventName != event {
					continue
				}
				date := rec.Date
				if ts, ok := model.ParseTimestamp(rec.Date); ok {
					date = ts.Format("2006-01-02 15:04")
				}
				eventName := rec.EventName
				if eventName == "" {
					eventName = "-"
				}
				fmt.Fprintf(out, "%-8s  %-20s  %-12s  %s\n", rec.VanNumber, date, rec.InspectorID, eventName)
				shown++
			}
			if shown < len(recs) {
				fmt.Fprintf(out, "\n(%d of %d shown)\n", shown, len(recs))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&event, "event", "", "Only show inspections of this event")

	return cmd
}
