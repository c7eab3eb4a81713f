package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Jobs int
}

// importResult is the output of the import command.
type importResult struct {
	IDs []int64 `json:"ids"`
}

func (r importResult) String() string {
	ids := make([]string, len(r.IDs))
	for i, id := range r.IDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("imported %d contacts: %s", len(r.IDs), strings.Join(ids, " "))
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <contacts.yaml>",
		Short: "Create every contact listed in a YAML file",
		Long: `Create every contact listed under the contacts key of a YAML file.

Contacts are written concurrently, each in its own transaction. The first
failure stops the remaining writes; contacts already created are kept.

Example:
  contactsync import --db ./contacts.db --jobs 8 addressbook.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return importContacts(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 4, "number of contacts written concurrently")

	return cmd
}

func importContacts(opts *ImportOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Jobs < 1 {
		return formatter.fail("invalid --jobs", &argError{Arg: fmt.Sprint(opts.Jobs), Message: "must be at least 1"})
	}

	list, err := loadContactList(path)
	if err != nil {
		return formatter.fail("failed to read contacts", err)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	g, ctx := errgroup.WithContext(commandContext(cmd))
	g.SetLimit(opts.Jobs)

	ids := make([]int64, len(list))
	for i, c := range list {
		g.Go(func() error {
			id, err := s.syncer.Create(ctx, c)
			if err != nil {
				return fmt.Errorf("contact %d: %w", i, err)
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return formatter.fail("import failed", err)
	}
	for i, id := range ids {
		formatter.VerboseLog("contact %d stored as %d", i, id)
	}

	return formatter.Success(importResult{IDs: ids})
}
