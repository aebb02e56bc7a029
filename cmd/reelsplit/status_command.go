package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon availability and job counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()

			info, infoErr := client.Info(cmd.Context())
			health, healthErr := client.Health(cmd.Context())

			if jsonFlag {
				if infoErr != nil {
					return infoErr
				}
				payload := map[string]any{
					"service": info,
					"healthy": healthErr == nil && health.Status == "healthy",
				}
				if list, err := client.Jobs(cmd.Context(), ""); err == nil {
					payload["jobs"] = list
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderSectionHeader("Reelsplit Daemon"))

			if infoErr != nil {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusError, infoErr.Error(), colorize))
				return nil
			}
			fmt.Fprintln(out, renderStatusLine("Daemon", statusOK,
				fmt.Sprintf("%s %s at %s", info.Service, info.Version, client.BaseURL()), colorize))

			if healthErr != nil {
				fmt.Fprintln(out, renderStatusLine("Health", statusError, healthErr.Error(), colorize))
			} else if health.Status == "healthy" {
				fmt.Fprintln(out, renderStatusLine("Health", statusOK, health.Status, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Health", statusWarn, health.Status, colorize))
			}

			list, err := client.Jobs(cmd.Context(), "")
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Jobs", statusWarn, err.Error(), colorize))
				return nil
			}
			counts := make(map[string]int)
			for _, job := range list.Jobs {
				counts[job.Status]++
			}
			summary := fmt.Sprintf("%d total", list.Total)
			for _, status := range []string{"uploaded", "splitting", "ready", "failed"} {
				if counts[status] > 0 {
					summary += fmt.Sprintf(", %d %s", counts[status], status)
				}
			}
			fmt.Fprintln(out, renderStatusLine("Jobs", statusInfo, summary, colorize))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit machine-readable JSON")
	return cmd
}
