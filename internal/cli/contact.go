package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// contactResult is the output of a write command.
type contactResult struct {
	ID     int64  `json:"id"`
	Action string `json:"action"`
}

func (r contactResult) String() string {
	if r.Action == "created" {
		return fmt.Sprint(r.ID)
	}
	return fmt.Sprintf("%s contact %d", r.Action, r.ID)
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <contact.yaml>",
		Short: "Create a contact from a YAML file",
		Long: `Create a contact from a YAML file and print its id.

A photo_file key attaches a JPEG, PNG or GIF photo; relative paths are
resolved against the contact file's directory.

Example:
  contactsync create --db ./contacts.db ada.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return createContact(rootOpts, args[0], cmd)
		},
	}
}

func createContact(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	c, err := loadContactFile(path)
	if err != nil {
		return formatter.fail("failed to read contact", err)
	}

	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.syncer.Create(commandContext(cmd), c)
	if err != nil {
		return formatter.fail("failed to create contact", err)
	}
	return formatter.Success(contactResult{ID: id, Action: "created"})
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <contact.yaml>",
		Short: "Replace a stored contact with the contents of a YAML file",
		Long: `Replace a stored contact with the contents of a YAML file.

Only data rows contactsync knows how to write are replaced; rows added by
other applications (such as group memberships) are kept.

Example:
  contactsync update --db ./contacts.db 42 ada.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateContact(rootOpts, args[0], args[1], cmd)
		},
	}
}

func updateContact(opts *RootOptions, idArg, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	id, err := parseContactID(idArg)
	if err != nil {
		return formatter.fail("invalid contact id", err)
	}
	c, err := loadContactFile(path)
	if err != nil {
		return formatter.fail("failed to read contact", err)
	}

	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.syncer.Update(commandContext(cmd), id, c); err != nil {
		return formatter.fail("failed to update contact", err)
	}
	return formatter.Success(contactResult{ID: id, Action: "updated"})
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored contact",
		Long: `Print a stored contact as YAML (text format) or JSON.

Example:
  contactsync show --db ./contacts.db 42
  contactsync show --db ./contacts.db --format json 42`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showContact(rootOpts, args[0], cmd)
		},
	}
}

func showContact(opts *RootOptions, idArg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	id, err := parseContactID(idArg)
	if err != nil {
		return formatter.fail("invalid contact id", err)
	}

	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.syncer.Load(commandContext(cmd), id)
	if err != nil {
		return formatter.fail("failed to load contact", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(c)
	}

	out, err := yaml.Marshal(c)
	if err != nil {
		return formatter.fail("failed to encode contact", err)
	}
	if _, err := formatter.Writer.Write(out); err != nil {
		return err
	}
	if len(c.Photo) > 0 {
		fmt.Fprintf(formatter.Writer, "# photo: %d bytes\n", len(c.Photo))
	}
	return nil
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a stored contact and all its data rows",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteContact(rootOpts, args[0], cmd)
		},
	}
}

func deleteContact(opts *RootOptions, idArg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	id, err := parseContactID(idArg)
	if err != nil {
		return formatter.fail("invalid contact id", err)
	}

	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.syncer.Delete(commandContext(cmd), id); err != nil {
		return formatter.fail("failed to delete contact", err)
	}
	return formatter.Success(contactResult{ID: id, Action: "deleted"})
}
