package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reelsplit/internal/api"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect upload jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs known to the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := ctx.client().Jobs(cmd.Context(), statusFlag)
			if err != nil {
				return err
			}
			if jsonFlag {
				return writeJSON(cmd, list)
			}
			if list.Total == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs found.")
				return nil
			}

			rows := make([][]string, 0, len(list.Jobs))
			for _, job := range list.Jobs {
				rows = append(rows, []string{
					job.ID,
					job.Filename,
					job.Status,
					formatSeconds(job.Duration),
					strconv.FormatFloat(job.SizeMB, 'f', 2, 64),
					job.UpdatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Filename", "Status", "Duration", "Size (MB)", "Updated"},
				rows, 3, 4))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by job status (uploaded, splitting, ready, failed)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job with its clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := ctx.client().Job(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonFlag {
				return writeJSON(cmd, detail)
			}
			printJobDetail(cmd, detail)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit machine-readable JSON")
	return cmd
}

func printJobDetail(cmd *cobra.Command, detail api.JobDetail) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderSectionHeader(detail.Title))
	fmt.Fprintln(out, renderStatusLine("ID", statusInfo, detail.ID, colorize))
	fmt.Fprintln(out, renderStatusLine("Filename", statusInfo, detail.Filename, colorize))
	fmt.Fprintln(out, renderStatusLine("Status", statusKindForJob(detail.Status), detail.Status, colorize))
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, formatSeconds(detail.Duration), colorize))
	fmt.Fprintln(out, renderStatusLine("Size", statusInfo,
		strconv.FormatFloat(detail.SizeMB, 'f', 2, 64)+" MB", colorize))
	if detail.Width > 0 && detail.Height > 0 {
		fmt.Fprintln(out, renderStatusLine("Resolution", statusInfo,
			fmt.Sprintf("%dx%d (%s)", detail.Width, detail.Height, detail.Codec), colorize))
	}
	if detail.Error != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, detail.Error, colorize))
	}
	if detail.DownloadURL != "" {
		fmt.Fprintln(out, renderStatusLine("Download", statusOK, detail.DownloadURL, colorize))
	}

	if len(detail.Clips) > 0 {
		rows := make([][]string, 0, len(detail.Clips))
		for _, clip := range detail.Clips {
			rows = append(rows, []string{
				strconv.Itoa(clip.Number),
				clip.Filename,
				formatSeconds(clip.Start),
				formatSeconds(clip.End),
				formatSeconds(clip.Duration),
				strconv.FormatFloat(clip.SizeMB, 'f', 2, 64),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"#", "Filename", "Start", "End", "Duration", "Size (MB)"},
			rows, 0, 2, 3, 4, 5))
	}
}

func statusKindForJob(status string) statusKind {
	switch status {
	case "ready":
		return statusOK
	case "failed":
		return statusError
	case "splitting":
		return statusWarn
	default:
		return statusInfo
	}
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64) + "s"
}
