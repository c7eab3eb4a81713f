package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/contactsync/internal/config"
	"github.com/roach88/contactsync/internal/contacts"
	"github.com/roach88/contactsync/internal/fields"
	"github.com/roach88/contactsync/internal/provider"
	"github.com/roach88/contactsync/internal/txn"
)

// session is the provider and syncer shared by one command run.
type session struct {
	cfg       config.Config
	provider  *provider.Provider
	syncer    *contacts.Syncer
	formatter *OutputFormatter
}

// openDatabaseError is a failure to open the provider database.
type openDatabaseError struct {
	Path string
	Err  error
}

func (e *openDatabaseError) Error() string {
	return fmt.Sprintf("open database %s: %v", e.Path, e.Err)
}

func (e *openDatabaseError) Unwrap() error {
	return e.Err
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openSession loads the configuration, sets up logging and opens the
// provider. Errors are already reported through the returned formatter.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	formatter := newFormatter(opts, cmd)

	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, formatter.fail("failed to load config", err)
		}
		cfg = loaded
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}

	// Configure logging based on config and verbose flag
	logLevel := cfg.LogLevel
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	logger.Debug("opening database", "path", cfg.Database)
	p, err := provider.Open(cfg.Database,
		provider.WithMaxPayloadBytes(cfg.MaxPayloadBytes),
		provider.WithPhotoProcessDelay(cfg.PhotoProcessDelay),
		provider.WithLogger(logger))
	if err != nil {
		return nil, formatter.fail("failed to open database", &openDatabaseError{Path: cfg.Database, Err: err})
	}

	syncer := contacts.New(p, fields.Default(fields.WithLogger(logger)),
		contacts.WithLogger(logger),
		contacts.WithBatchOptions(txn.WithYieldInterval(cfg.YieldInterval)),
		contacts.WithPhotoPolling(cfg.PhotoAttempts, cfg.PhotoInterval))

	return &session{
		cfg:       cfg,
		provider:  p,
		syncer:    syncer,
		formatter: formatter,
	}, nil
}

func (s *session) Close() {
	if err := s.provider.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// parseContactID parses a raw contact id argument.
func parseContactID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, &argError{Arg: arg, Message: "contact id must be a positive integer"}
	}
	return id, nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
