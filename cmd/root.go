// Package cmd assembles the primal-page command tree
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChrisgKent/primal-page/cmd/index"
	"github.com/ChrisgKent/primal-page/cmd/migrate"
	"github.com/ChrisgKent/primal-page/cmd/modify"
	"github.com/ChrisgKent/primal-page/cmd/validate"
	"github.com/ChrisgKent/primal-page/internal/conf"
	"github.com/ChrisgKent/primal-page/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "primal-page",
		Short: "Primer scheme repository tooling",
		Long:  "Tooling for curating a version-controlled repository of PCR primer schemes: BED file migration, scheme validation and index builds.",
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(
		validate.Command(settings),
		index.Command(settings),
		migrate.Command(settings),
		modify.Command(settings),
	)

	var closeFileLog func() error
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if settings.Debug {
			level = slog.LevelDebug
		}
		logging.Init(level)

		if settings.Log.Enabled {
			closer, err := logging.EnableFileLogging(settings.Log.Path, cmd.Name(), level)
			if err != nil {
				return err
			}
			closeFileLog = closer
		}
		return nil
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if closeFileLog == nil {
			return nil
		}
		return closeFileLog()
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d",
		viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Repository.ParentDir, "parentdir",
		viper.GetString("repository.parentdir"), "Directory containing the primer class trees and index.json")
	rootCmd.PersistentFlags().StringVar(&settings.Repository.GithubRepo, "githubrepo",
		viper.GetString("repository.githubrepo"), "owner/name slug used to build raw download URLs")
}
