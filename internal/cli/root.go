package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Overrides applied on top of the loaded configuration when set.
	Database  string
	Driver    string
	SourceDir string
	HiddenDir string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the luckydraw CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "luckydraw",
		Short: "Prize drawing ledger",
		Long: `luckydraw keeps a ledger of users, prizes and wins, and renders a
collage of prize images where only the prizes a user has won are revealed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, ErrCodeUsage,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config (default ./luckydraw.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (sqlite3|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.SourceDir, "images", "", "directory of prize images")
	cmd.PersistentFlags().StringVar(&opts.HiddenDir, "hidden", "", "directory for obscured images")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewUsersCommand(opts))
	cmd.AddCommand(NewPrizesCommand(opts))
	cmd.AddCommand(NewRetireCommand(opts))
	cmd.AddCommand(NewDrawCommand(opts))
	cmd.AddCommand(NewWinCommand(opts))
	cmd.AddCommand(NewLeaderboardCommand(opts))
	cmd.AddCommand(NewScoreCommand(opts))
	cmd.AddCommand(NewObscureCommand(opts))
	cmd.AddCommand(NewCollageCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported on stdout (json) or stderr (text).
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	format := opts.Format
	if !isValidFormat(format) {
		format = "text"
	}
	f := &OutputFormatter{Format: format, Writer: stdout, ErrWriter: stderr, Verbose: opts.Verbose}
	code, exit := Classify(err)
	_ = f.Error(code, err.Error(), nil)
	return exit
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
