package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/luckydraw/internal/draw"
	"github.com/roach88/luckydraw/internal/ledger"
)

// NewDrawCommand creates the draw command.
func NewDrawCommand(rootOpts *RootOptions) *cobra.Command {
	var retire bool

	cmd := &cobra.Command{
		Use:   "draw <user-id>",
		Short: "Draw a random unused prize for a user",
		Long: `Pick a prize uniformly at random among unused prizes and record it as
won by the user. Exits with E_NO_PRIZES when every prize is used.

Examples:
  luckydraw draw 1001
  luckydraw draw 1001 --retire`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", args[0])
			if err != nil {
				return err
			}

			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.draw(retire).Draw(cmd.Context(), userID)
			if err != nil {
				return WrapExitError(ExitFailure, ErrCodeStore, "draw failed", err)
			}
			return s.out.Emit(res, func(w io.Writer) { writeResult(w, res) })
		},
	}

	cmd.Flags().BoolVar(&retire, "retire", false, "mark the prize used once won (overrides draw.retire_on_win=false)")
	return cmd
}

// NewWinCommand creates the win command.
func NewWinCommand(rootOpts *RootOptions) *cobra.Command {
	var retire bool

	cmd := &cobra.Command{
		Use:   "win <user-id> <prize-id>",
		Short: "Record that a user won a specific prize",
		Long: `Record a win. Recording the same user and prize twice is not an error:
the second call reports already_recorded and writes nothing.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", args[0])
			if err != nil {
				return err
			}
			prizeID, err := parseID("prize", args[1])
			if err != nil {
				return err
			}

			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.draw(retire).Record(cmd.Context(), userID, prizeID)
			if err != nil {
				return WrapExitError(ExitFailure, ErrCodeStore, "failed to record win", err)
			}
			return s.out.Emit(res, func(w io.Writer) { writeResult(w, res) })
		},
	}

	cmd.Flags().BoolVar(&retire, "retire", false, "mark the prize used once won")
	return cmd
}

func writeResult(w io.Writer, res draw.Result) {
	switch res.Outcome {
	case ledger.AlreadyRecorded:
		fmt.Fprintf(w, "User %d already won prize %d (%s)\n", res.UserID, res.Prize.ID, res.Prize.Image)
	default:
		fmt.Fprintf(w, "User %d won prize %d (%s)\n", res.UserID, res.Prize.ID, res.Prize.Image)
	}
	if res.Retired {
		fmt.Fprintf(w, "Prize %d retired\n", res.Prize.ID)
	}
}
