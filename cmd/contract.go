package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"section3/internal/bootstrap"
	"section3/internal/errs"
	"section3/internal/usecase/compliance"
)

const dateLayout = "2006-01-02"

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Register, onboard and evaluate contracts",
}

var contractRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Store a new contract and run the onboarding workflow",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		input, err := registerInputFromFlags(cmd)
		if err != nil {
			return printResult(cmd, nil, err)
		}

		out, err := svc.RegisterContract(cmd.Context(), input)
		return printResult(cmd, out, err)
	}),
}

var contractOnboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Re-run applicability and onboarding for an existing contract",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		contractID, _ := cmd.Flags().GetString("contract")
		out, err := svc.ProcessNewContract(cmd.Context(), compliance.ProcessNewContractInput{
			ContractID: contractID,
			ActorID:    actorFromFlags(cmd),
		})
		return printResult(cmd, out, err)
	}),
}

var contractApplicabilityCmd = &cobra.Command{
	Use:   "applicability",
	Short: "Evaluate Section 3 applicability without storing anything",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		contractType, _ := cmd.Flags().GetString("type")
		sources, _ := cmd.Flags().GetStringSlice("funding-source")

		out, err := svc.EvaluateApplicability(cmd.Context(), compliance.ApplicabilityRequest{
			ContractType:       contractType,
			HUDFundingAmount:   amountFlag(cmd, "hud-funding"),
			TotalProjectCost:   amountFlag(cmd, "total-cost"),
			FundingSourceNames: sources,
		})
		return printResult(cmd, out, err)
	}),
}

func registerInputFromFlags(cmd *cobra.Command) (compliance.RegisterContractInput, error) {
	flags := cmd.Flags()
	clientID, _ := flags.GetString("client")
	number, _ := flags.GetString("number")
	title, _ := flags.GetString("title")
	contractType, _ := flags.GetString("type")
	status, _ := flags.GetString("status")
	sources, _ := flags.GetStringSlice("funding-source")

	start, err := dateFlag(cmd, "start")
	if err != nil {
		return compliance.RegisterContractInput{}, err
	}
	end, err := dateFlag(cmd, "end")
	if err != nil {
		return compliance.RegisterContractInput{}, err
	}

	return compliance.RegisterContractInput{
		ClientID:           clientID,
		ContractNumber:     number,
		Title:              title,
		ContractType:       contractType,
		HUDFundingAmount:   amountFlag(cmd, "hud-funding"),
		TotalProjectCost:   amountFlag(cmd, "total-cost"),
		StartDate:          start,
		EndDate:            end,
		Status:             status,
		FundingSourceNames: sources,
		ActorID:            actorFromFlags(cmd),
	}, nil
}

// amountFlag returns nil when the flag was not given so the amount stays unknown.
func amountFlag(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, _ := cmd.Flags().GetFloat64(name)
	return &value
}

func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, errs.E(errs.KindInvalidInput, errs.Wrapf(err, "parse --%s", name))
	}
	return parsed, nil
}

func actorFromFlags(cmd *cobra.Command) *string {
	actor, _ := cmd.Flags().GetString("actor")
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil
	}
	return &actor
}

func init() {
	rootCmd.AddCommand(contractCmd)
	contractCmd.AddCommand(contractRegisterCmd, contractOnboardCmd, contractApplicabilityCmd)

	contractRegisterCmd.Flags().String("client", "", "Client (housing authority) ID")
	contractRegisterCmd.Flags().String("number", "", "Contract number")
	contractRegisterCmd.Flags().String("title", "", "Contract title")
	contractRegisterCmd.Flags().String("type", "construction", "Contract type: construction, non_construction, other")
	contractRegisterCmd.Flags().Float64("hud-funding", 0, "HUD funding amount")
	contractRegisterCmd.Flags().Float64("total-cost", 0, "Total project cost")
	contractRegisterCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	contractRegisterCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	contractRegisterCmd.Flags().String("status", "active", "Contract status")
	contractRegisterCmd.Flags().StringSlice("funding-source", nil, "Funding source name (repeatable)")
	contractRegisterCmd.Flags().String("actor", "", "User ID recorded in the audit log")

	contractOnboardCmd.Flags().String("contract", "", "Contract ID")
	contractOnboardCmd.Flags().String("actor", "", "User ID recorded in the audit log")
	_ = contractOnboardCmd.MarkFlagRequired("contract")

	contractApplicabilityCmd.Flags().String("type", "construction", "Contract type: construction, non_construction, other")
	contractApplicabilityCmd.Flags().Float64("hud-funding", 0, "HUD funding amount")
	contractApplicabilityCmd.Flags().Float64("total-cost", 0, "Total project cost")
	contractApplicabilityCmd.Flags().StringSlice("funding-source", nil, "Funding source name (repeatable)")
}
