// Package validate provides the scheme validation subcommands
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisgKent/primal-page/internal/conf"
	"github.com/ChrisgKent/primal-page/internal/logging"
	"github.com/ChrisgKent/primal-page/internal/validate"
)

// Command creates the validate command with its scheme and all subcommands
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate scheme integrity",
	}

	schemeCmd := &cobra.Command{
		Use:   "scheme [info.json]",
		Short: "Validate a single scheme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report := validate.Scheme(args[0], nil)
			printReport(report)
			if !report.OK() {
				return fmt.Errorf("%d error(s) in %s", len(report.Errors), args[0])
			}
			return nil
		},
	}

	allCmd := &cobra.Command{
		Use:   "all [directory]",
		Short: "Validate every scheme under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := validate.Tree(args[0], nil)
			if err != nil {
				return err
			}

			failed := 0
			for _, report := range reports {
				printReport(report)
				if !report.OK() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scheme(s) failed validation", failed, len(reports))
			}
			logging.Info("all schemes clean", "schemes", len(reports))
			return nil
		},
	}

	cmd.AddCommand(schemeCmd, allCmd)
	return cmd
}

// printReport surfaces every collected error with enough context (path and
// field) to locate it without a rerun.
func printReport(report *validate.Report) {
	name := report.SchemePath
	if name == "" {
		name = report.InfoPath
	}
	if report.OK() {
		logging.Info("success", "scheme", name)
		return
	}
	for _, err := range report.Errors {
		logging.Error("validation failed", "scheme", name, "error", err)
	}
}
