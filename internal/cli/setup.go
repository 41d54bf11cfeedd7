package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema and hidden image directory",
		Long: `Create the database tables and the hidden image directory if they do
not exist yet. Safe to run on every start.

Example:
  luckydraw init --db ./prizes.db --hidden ./hidden_img`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.pipeline()
			if err != nil {
				return err
			}
			if err := p.Initialize(cmd.Context()); err != nil {
				return WrapExitError(ExitCommandError, ErrCodeStore, "failed to initialize", err)
			}

			data := map[string]string{
				"database":   s.cfg.Database.Path,
				"hidden_dir": s.cfg.Images.HiddenDir,
			}
			return s.out.Emit(data, func(w io.Writer) {
				fmt.Fprintf(w, "Initialized %s (hidden images in %s)\n", s.cfg.Database.Path, s.cfg.Images.HiddenDir)
			})
		},
	}
}

// LoadResult is the output of the load command.
type LoadResult struct {
	Loaded   int     `json:"loaded"`
	PrizeIDs []int64 `json:"prize_ids"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Register one prize per file in the image directory",
		Long: `Register one prize per file found in the image directory.

Files are not deduplicated: running load twice registers every file again
under new prize ids.

Example:
  luckydraw load --images ./img`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.pipeline()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := p.Initialize(ctx); err != nil {
				return WrapExitError(ExitCommandError, ErrCodeStore, "failed to initialize", err)
			}
			ids, err := p.LoadPrizes(ctx)
			if err != nil {
				return WrapExitError(ExitFailure, ErrCodeStore, "failed to load prizes", err)
			}

			res := LoadResult{Loaded: len(ids), PrizeIDs: ids}
			return s.out.Emit(res, func(w io.Writer) {
				fmt.Fprintf(w, "Loaded %d prizes from %s\n", res.Loaded, s.cfg.Images.SourceDir)
			})
		},
	}
}
