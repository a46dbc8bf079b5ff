package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/yungbote/careercoach-backend/internal/app"
	"github.com/yungbote/careercoach-backend/internal/domain/goals/triggers"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

var ValidFormats = []string{"text", "json"}

// Session is an opened goal engine plus the means to release it.
type Session struct {
	Goals app.Goals
	Close func(ctx context.Context) error
}

// Opener connects to the configured database. Tests substitute their own.
type Opener func(ctx context.Context) (*Session, error)

type RootOptions struct {
	Format string
	Open   Opener
	// Registry lists triggers without opening the database.
	Registry func() (*triggers.Registry, error)
}

// DefaultOpener builds the engine from the same environment the server reads.
// Opening migrates the schema.
func DefaultOpener(log *logger.Logger) Opener {
	return func(ctx context.Context) (*Session, error) {
		core, err := app.NewCore(log)
		if err != nil {
			return nil, err
		}
		return &Session{Goals: core.Goals, Close: core.Close}, nil
	}
}

func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts.Registry == nil {
		opts.Registry = triggers.LoadFromEnv
	}
	cmd := &cobra.Command{
		Use:   "goalsctl",
		Short: "Inspect and drive the career goal engine",
		Long: `goalsctl talks to the goal engine's database directly.

It reads the same environment as the server (DB_DRIVER, POSTGRES_*, SQLITE_PATH,
GOALS_WEEK_TIMEZONE, GOAL_TRIGGERS_YAML).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return WrapExitError(ExitCommandError, "invalid flags",
					fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			// cobra would otherwise report missing required flags without an exit code.
			if err := cmd.ValidateRequiredFlags(); err != nil {
				return WrapExitError(ExitCommandError, "invalid flags", err)
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newFireCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newProgressCommand(opts))
	cmd.AddCommand(newMaterializeCommand(opts))
	cmd.AddCommand(newEventsCommand(opts))
	cmd.AddCommand(newTriggersCommand(opts))
	return cmd
}

// noArgs is cobra.NoArgs with a usage exit code.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}
	return nil
}

func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// withSession opens the engine, runs fn and closes the engine again.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, s *Session) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := opts.Open(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "open goal engine", err)
	}
	defer func() {
		if cerr := s.Close(ctx); cerr != nil && err == nil {
			err = WrapExitError(ExitCommandError, "close goal engine", cerr)
		}
	}()
	return fn(ctx, s)
}
