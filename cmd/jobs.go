package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"section3/internal/bootstrap"
	"section3/internal/usecase/compliance"
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Scheduled reminder jobs",
}

var remindersQuarterlyCmd = &cobra.Command{
	Use:   "quarterly",
	Short: "Create quarterly report tasks for the quarter that just ended",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		out, err := svc.GenerateQuarterlyReportReminders(cmd.Context())
		return printResult(cmd, out, err)
	}),
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification scans",
}

var notifyRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all notification scans, or only the ones named with --scan",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		scans, _ := cmd.Flags().GetStringSlice("scan")
		if len(scans) == 0 {
			out, err := svc.RunAllNotificationChecks(cmd.Context())
			return printResult(cmd, out, err)
		}

		results := make([]compliance.ScanResult, 0, len(scans))
		for _, scan := range scans {
			out, err := svc.RunScan(cmd.Context(), scan)
			if err != nil {
				return printResult(cmd, results, err)
			}
			results = append(results, out)
		}
		return printResult(cmd, results, nil)
	}),
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Scheduled job ledger",
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last recorded run of every job",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		out, err := svc.JobStatuses(cmd.Context())
		return printResult(cmd, out, err)
	}),
}

func init() {
	rootCmd.AddCommand(remindersCmd, notifyCmd, jobsCmd)
	remindersCmd.AddCommand(remindersQuarterlyCmd)
	notifyCmd.AddCommand(notifyRunCmd)
	jobsCmd.AddCommand(jobsStatusCmd)

	notifyRunCmd.Flags().StringSlice("scan", nil, "Scan name (repeatable): "+strings.Join(compliance.ScanNames(), ", "))
}
