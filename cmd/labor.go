package cmd

import (
	"github.com/spf13/cobra"

	"section3/internal/bootstrap"
	domain "section3/internal/domain/compliance"
	"section3/internal/usecase/compliance"
)

var laborCmd = &cobra.Command{
	Use:   "labor",
	Short: "Labor hour aggregation",
}

var laborSummarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Recompute the labor summary of a contract for one period",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		contractID, _ := cmd.Flags().GetString("contract")
		period, _ := cmd.Flags().GetString("period")

		out, err := svc.UpdateContractLaborSummary(cmd.Context(), contractID, domain.Period(period))
		return printResult(cmd, out, err)
	}),
}

var laborRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record hours a worker spent on a contract on one day",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		workDate, err := dateFlag(cmd, "date")
		if err != nil {
			return printResult(cmd, nil, err)
		}
		contractID, _ := cmd.Flags().GetString("contract")
		workerID, _ := cmd.Flags().GetString("worker")
		hours, _ := cmd.Flags().GetFloat64("hours")

		out, err := svc.RecordLaborHours(cmd.Context(), compliance.RecordLaborHoursInput{
			ContractID:  contractID,
			WorkerID:    workerID,
			WorkDate:    workDate,
			HoursWorked: hours,
			ActorID:     actorFromFlags(cmd),
		})
		return printResult(cmd, out, err)
	}),
}

func init() {
	rootCmd.AddCommand(laborCmd)
	laborCmd.AddCommand(laborSummarizeCmd, laborRecordCmd)

	laborSummarizeCmd.Flags().String("contract", "", "Contract ID")
	laborSummarizeCmd.Flags().String("period", string(domain.PeriodTotal), "Period: monthly, quarterly, total")
	_ = laborSummarizeCmd.MarkFlagRequired("contract")

	laborRecordCmd.Flags().String("contract", "", "Contract ID")
	laborRecordCmd.Flags().String("worker", "", "Worker ID")
	laborRecordCmd.Flags().String("date", "", "Work date (YYYY-MM-DD)")
	laborRecordCmd.Flags().Float64("hours", 0, "Hours worked")
	laborRecordCmd.Flags().String("actor", "", "User ID recorded in the audit log")
	_ = laborRecordCmd.MarkFlagRequired("contract")
	_ = laborRecordCmd.MarkFlagRequired("worker")
	_ = laborRecordCmd.MarkFlagRequired("date")
	_ = laborRecordCmd.MarkFlagRequired("hours")
}
