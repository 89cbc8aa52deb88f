// Package modify provides the metadata edit subcommands. Every edit is a
// validate-then-write transition: a new record is produced and validated
// before the info.json and README are regenerated in full.
package modify

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisgKent/primal-page/internal/bedfile"
	"github.com/ChrisgKent/primal-page/internal/conf"
	"github.com/ChrisgKent/primal-page/internal/errors"
	"github.com/ChrisgKent/primal-page/internal/logging"
	"github.com/ChrisgKent/primal-page/internal/scheme"
)

// transition applies one record transition and regenerates the scheme files
func transition(infoPath string, apply func(scheme.Info) (*scheme.Info, error)) error {
	info, err := scheme.ReadInfo(infoPath)
	if err != nil {
		return err
	}
	next, err := apply(*info)
	if err != nil {
		return err
	}
	if err := scheme.WriteInfo(next, infoPath); err != nil {
		return err
	}
	return scheme.WriteReadme(next, filepath.Dir(infoPath))
}

// Command creates the modify command with one subcommand per transition
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modify",
		Short: "Edit scheme metadata",
	}

	var authorIndex int
	addAuthor := &cobra.Command{
		Use:   "add-author [info.json] [author]",
		Short: "Insert an author into the ordered author list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transition(args[0], func(info scheme.Info) (*scheme.Info, error) {
				next, err := info.AddAuthor(args[1], authorIndex)
				if err == nil {
					logging.Info("added author", "author", args[1], "scheme", info.SchemePath())
				}
				return next, err
			})
		},
	}
	addAuthor.Flags().IntVar(&authorIndex, "author-index", -1, "0-based position to insert at, default is the end")

	removeAuthor := &cobra.Command{
		Use:   "remove-author [info.json] [author]",
		Short: "Remove an author",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transition(args[0], func(info scheme.Info) (*scheme.Info, error) {
				return info.RemoveAuthor(args[1])
			})
		},
	}

	reorderAuthors := &cobra.Command{
		Use:   "reorder-authors [info.json] [indexes]",
		Short: "Reorder the author list",
		Long:  "Reorder authors by 0-based indexes separated by spaces, e.g. \"1 0 2\". Indexes not given keep their order at the end.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var order []int
			for _, field := range strings.Fields(args[1]) {
				idx, err := strconv.Atoi(field)
				if err != nil {
					return err
				}
				order = append(order, idx)
			}
			return transition(args[0], func(info scheme.Info) (*scheme.Info, error) {
				return info.ReorderAuthors(order)
			})
		},
	}

	addCitation := &cobra.Command{
		Use:   "add-citation [info.json] [citation]",
		Short: "Add a citation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transition(args[0], func(info scheme.Info) (*scheme.Info, error) {
				return info.AddCitation(args[1])
			})
		},
	}

	removeCitation := &cobra.Command{
		Use:   "remove-citation [info.json] [citation]",
		Short: "Remove a citation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transition(args[0], func(info scheme.Info) (*scheme.Info, error) {
				return info.RemoveCitation(args[1])
			})
		},
	}

	changeStatus := &cobra.Command{
		Use:   "change-status [info.json] [status]",
		Short: "Change the lifecycle status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transition(args[0], func(info scheme.Info) (*scheme.Info, error) {
				return info.WithStatus(scheme.SchemeStatus(args[1]))
			})
		},
	}

	changeLicense := &cobra.Command{
		Use:   "change-license [info.json] [license]",
		Short: "Change the license",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transition(args[0], func(info scheme.Info) (*scheme.Info, error) {
				return info.WithLicense(args[1])
			})
		},
	}

	changeDescription := &cobra.Command{
		Use:   "change-description [info.json] [description]",
		Short: "Replace the description, empty string removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transition(args[0], func(info scheme.Info) (*scheme.Info, error) {
				return info.WithDescription(strings.TrimSpace(args[1]))
			})
		},
	}

	changeDerivedFrom := &cobra.Command{
		Use:   "change-derivedfrom [info.json] [derivedfrom]",
		Short: "Replace the derivedfrom field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transition(args[0], func(info scheme.Info) (*scheme.Info, error) {
				return info.WithDerivedFrom(strings.TrimSpace(args[1]))
			})
		},
	}

	changeContactInfo := &cobra.Command{
		Use:   "change-contactinfo [info.json] [contactinfo]",
		Short: "Replace the contact information",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transition(args[0], func(info scheme.Info) (*scheme.Info, error) {
				return info.WithContactInfo(args[1])
			})
		},
	}

	changePrimerClass := &cobra.Command{
		Use:   "change-primerclass [info.json] [primerclass]",
		Short: "Change the primer class",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transition(args[0], func(info scheme.Info) (*scheme.Info, error) {
				return info.WithPrimerClass(scheme.PrimerClass(args[1]))
			})
		},
	}

	addLink := &cobra.Command{
		Use:   "add-link [info.json] [field] [link]",
		Short: "Add a link to one of the link fields",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transition(args[0], func(info scheme.Info) (*scheme.Info, error) {
				return info.AddLink(args[1], args[2])
			})
		},
	}

	removeLink := &cobra.Command{
		Use:   "remove-link [info.json] [field] [link]",
		Short: "Remove a link from one of the link fields",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transition(args[0], func(info scheme.Info) (*scheme.Info, error) {
				return info.RemoveLink(args[1], args[2])
			})
		},
	}

	regenerate := &cobra.Command{
		Use:   "regenerate [info.json]",
		Short: "Normalize scheme files and regenerate the record and README",
		Long: "Trims trailing whitespace from primer.bed and reference.fasta, re-detects " +
			"the BED file generation, recomputes both content hashes and rewrites " +
			"info.json and README.md in full.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infoPath := args[0]
			dir := filepath.Dir(infoPath)
			bedPath := filepath.Join(dir, "primer.bed")
			refPath := filepath.Join(dir, "reference.fasta")

			if err := scheme.TrimFileWhitespace(bedPath, bedPath); err != nil {
				return err
			}
			if err := scheme.TrimFileWhitespace(refPath, refPath); err != nil {
				return err
			}

			version := bedfile.DetermineBedFileVersionFromFile(bedPath)
			if version == bedfile.FileInvalid {
				return errors.Newf("could not determine bedfile version for %s", bedPath).
					Component("modify").
					Category(errors.CategoryNaming).
					FileContext(bedPath).
					Build()
			}

			bedMD5, err := scheme.MD5File(bedPath)
			if err != nil {
				return err
			}
			refMD5, err := scheme.MD5File(refPath)
			if err != nil {
				return err
			}

			return transition(infoPath, func(info scheme.Info) (*scheme.Info, error) {
				next, err := info.WithBedVersion(version.String())
				if err != nil {
					return nil, err
				}
				next, err = next.WithHashes(bedMD5, refMD5)
				if err == nil {
					logging.Info("regenerated", "scheme", next.SchemePath(), "articbedversion", version.String())
				}
				return next, err
			})
		},
	}

	cmd.AddCommand(
		addAuthor, removeAuthor, reorderAuthors,
		addCitation, removeCitation,
		changeStatus, changeLicense, changeDescription,
		changeDerivedFrom, changeContactInfo, changePrimerClass,
		addLink, removeLink, regenerate,
	)
	return cmd
}
