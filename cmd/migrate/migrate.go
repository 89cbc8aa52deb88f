// Package migrate provides the BED file migration subcommand
package migrate

import (
	"github.com/spf13/cobra"

	"github.com/ChrisgKent/primal-page/internal/bedfile"
	"github.com/ChrisgKent/primal-page/internal/conf"
	"github.com/ChrisgKent/primal-page/internal/fasta"
	"github.com/ChrisgKent/primal-page/internal/logging"
)

// Command creates the migrate command
func Command(settings *conf.Settings) *cobra.Command {
	var reference string

	cmd := &cobra.Command{
		Use:   "migrate [primer.bed]",
		Short: "Rewrite a BED file to the current (v3) generation",
		Long: "Deterministically rewrites a v1 or v2 BED file to v3: 7 columns with " +
			"explicitly indexed primer names. Primer indices are assigned per amplicon " +
			"and strand in lexicographic sequence order, so the result is independent of " +
			"input line order. 6-column files need --reference to resolve sequences.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bedPath := args[0]

			var seqs bedfile.SequenceProvider
			if reference != "" {
				idx, err := fasta.IndexFile(reference)
				if err != nil {
					return err
				}
				seqs = idx
			}

			if err := bedfile.RemapFile(bedPath, seqs); err != nil {
				return err
			}
			logging.Info("migrated", "path", bedPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&reference, "reference", "", "Reference FASTA used to resolve sequences for 6-column input")
	return cmd
}
