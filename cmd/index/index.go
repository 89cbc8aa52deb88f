// Package index provides the repository index subcommands
package index

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ChrisgKent/primal-page/internal/conf"
	"github.com/ChrisgKent/primal-page/internal/index"
	"github.com/ChrisgKent/primal-page/internal/logging"
)

// Command creates the index command
func Command(settings *conf.Settings) *cobra.Command {
	var commit string
	var force bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Repository index builds",
	}

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild index.json from the scheme tree",
		Long: "Walks every primer class tree under the parent directory, rebuilds the flat " +
			"index and proves it consistent with the previously published index. Published " +
			"artifacts are immutable: a changed hash fails the build unless --force is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := index.BuildOptions{
				ParentDir:  settings.Repository.ParentDir,
				GithubRepo: settings.Repository.GithubRepo,
				Commit:     commit,
				Force:      force,
			}

			if settings.Audit.Enabled {
				audit, err := index.OpenAuditLog(settings.Audit.Path)
				if err != nil {
					return err
				}
				opts.Audit = audit
			}

			if force {
				logging.Warn("consistency check bypassed by --force")
			}

			indexPath := filepath.Join(settings.Repository.ParentDir, "index.json")
			result := index.Build(opts, indexPath)
			for _, err := range result.Errors {
				logging.Error("index build failed", "error", err)
			}
			if !result.OK() {
				return fmt.Errorf("index build failed with %d error(s)", len(result.Errors))
			}

			logging.Info("index published", "path", indexPath, "schemes", result.Schemes, "commit", commit)
			return nil
		},
	}
	buildCmd.Flags().StringVar(&commit, "commit", "", "Commit identifier recorded as the build marker")
	buildCmd.Flags().BoolVar(&force, "force", false, "Republish even if published hashes changed (audited)")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent index builds from the audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			audit, err := index.OpenAuditLog(settings.Audit.Path)
			if err != nil {
				return err
			}
			records, err := audit.History(20)
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tforced=%t\tschemes=%d\tcommit=%s\n",
					rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Outcome, rec.Forced, rec.Schemes, rec.Commit)
			}
			return nil
		},
	}

	cmd.AddCommand(buildCmd, historyCmd)
	return cmd
}
