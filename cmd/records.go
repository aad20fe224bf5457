package cmd

import (
	"github.com/spf13/cobra"

	"section3/internal/bootstrap"
	"section3/internal/usecase/compliance"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Worker registry",
}

var workerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a worker to a client",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		clientID, _ := cmd.Flags().GetString("client")
		name, _ := cmd.Flags().GetString("name")
		section3, _ := cmd.Flags().GetBool("section3")
		targeted, _ := cmd.Flags().GetBool("targeted")

		out, err := svc.AddWorker(cmd.Context(), compliance.AddWorkerInput{
			ClientID:                 clientID,
			FullName:                 name,
			IsSection3Worker:         section3,
			IsTargetedSection3Worker: targeted,
		})
		return printResult(cmd, out, err)
	}),
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "User profiles that receive notifications",
}

var profileAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or refresh a user profile",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		userID, _ := cmd.Flags().GetString("user")
		clientID, _ := cmd.Flags().GetString("client")
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")

		out, err := svc.AddProfile(cmd.Context(), compliance.AddProfileInput{
			UserID:   userID,
			ClientID: clientID,
			FullName: name,
			Email:    email,
			Role:     role,
		})
		return printResult(cmd, out, err)
	}),
}

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Compliance form submissions",
}

var formSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Record a submitted compliance form",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		start, err := dateFlag(cmd, "period-start")
		if err != nil {
			return printResult(cmd, nil, err)
		}
		end, err := dateFlag(cmd, "period-end")
		if err != nil {
			return printResult(cmd, nil, err)
		}
		contractID, _ := cmd.Flags().GetString("contract")
		formType, _ := cmd.Flags().GetString("type")

		out, err := svc.SubmitComplianceForm(cmd.Context(), compliance.SubmitComplianceFormInput{
			ContractID:  contractID,
			FormType:    formType,
			PeriodStart: start,
			PeriodEnd:   end,
			ActorID:     actorFromFlags(cmd),
		})
		return printResult(cmd, out, err)
	}),
}

func init() {
	rootCmd.AddCommand(workerCmd, profileCmd, formCmd)
	workerCmd.AddCommand(workerAddCmd)
	profileCmd.AddCommand(profileAddCmd)
	formCmd.AddCommand(formSubmitCmd)

	workerAddCmd.Flags().String("client", "", "Client ID")
	workerAddCmd.Flags().String("name", "", "Full name")
	workerAddCmd.Flags().Bool("section3", false, "Worker qualifies as a Section 3 worker")
	workerAddCmd.Flags().Bool("targeted", false, "Worker qualifies as a targeted Section 3 worker")
	_ = workerAddCmd.MarkFlagRequired("client")
	_ = workerAddCmd.MarkFlagRequired("name")

	profileAddCmd.Flags().String("user", "", "User ID")
	profileAddCmd.Flags().String("client", "", "Client ID")
	profileAddCmd.Flags().String("name", "", "Full name")
	profileAddCmd.Flags().String("email", "", "Email")
	profileAddCmd.Flags().String("role", "", "Role: admin, client_admin, compliance_manager")
	_ = profileAddCmd.MarkFlagRequired("user")
	_ = profileAddCmd.MarkFlagRequired("client")
	_ = profileAddCmd.MarkFlagRequired("role")

	formSubmitCmd.Flags().String("contract", "", "Contract ID")
	formSubmitCmd.Flags().String("type", "quarterly", "Form type")
	formSubmitCmd.Flags().String("period-start", "", "Reporting period start (YYYY-MM-DD)")
	formSubmitCmd.Flags().String("period-end", "", "Reporting period end (YYYY-MM-DD)")
	formSubmitCmd.Flags().String("actor", "", "User ID recorded in the audit log")
	_ = formSubmitCmd.MarkFlagRequired("contract")
	_ = formSubmitCmd.MarkFlagRequired("period-start")
	_ = formSubmitCmd.MarkFlagRequired("period-end")
}
