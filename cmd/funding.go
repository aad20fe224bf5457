package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"section3/internal/bootstrap"
	"section3/internal/errs"
	"section3/internal/usecase/compliance"
)

var fundingCmd = &cobra.Command{
	Use:   "funding",
	Short: "Manage the funding source reference table",
}

var fundingSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert funding sources from a TOML file",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *compliance.Service) error {
		path, _ := cmd.Flags().GetString("file")
		path = strings.TrimSpace(path)

		document, err := os.ReadFile(path)
		if err != nil {
			return printResult(cmd, nil, errs.E(errs.KindInvalidInput, errs.Wrapf(err, "read %s", path)))
		}

		out, err := svc.SeedFundingSources(cmd.Context(), document)
		return printResult(cmd, out, err)
	}),
}

func init() {
	rootCmd.AddCommand(fundingCmd)
	fundingCmd.AddCommand(fundingSeedCmd)

	fundingSeedCmd.Flags().String("file", "configs/funding_sources.toml", "TOML file with [[funding_source]] entries")
}
