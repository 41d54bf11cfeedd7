package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/luckydraw/internal/standings"
)

// NewLeaderboardCommand creates the leaderboard command.
func NewLeaderboardCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show users ranked by number of wins",
		Long: `Show users ranked by number of distinct prizes won, most first.
Ties are broken by user id. Users without wins are not listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			n := s.cfg.Leaderboard.Limit
			if cmd.Flags().Changed("limit") {
				n = limit
			}
			rows, err := s.board().Top(cmd.Context(), n)
			if err != nil {
				return WrapExitError(ExitFailure, ErrCodeStore, "failed to read leaderboard", err)
			}
			return s.out.Emit(rows, func(w io.Writer) { writeLeaderboard(w, rows) })
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of rows (default from leaderboard.limit)")
	return cmd
}

func writeLeaderboard(w io.Writer, rows []standings.Standing) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No wins recorded yet.")
		return
	}
	fmt.Fprintf(w, "%-4s  %-20s %5s\n", "RANK", "USER", "WINS")
	for _, r := range rows {
		fmt.Fprintf(w, "%4d  %-20s %5d\n", r.Rank, r.UserName, r.Wins)
	}
}

// ScoreResult is the output of the score command.
type ScoreResult struct {
	UserID int64 `json:"user_id"`
	Wins   int   `json:"wins"`
}

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "score <user-id>",
		Short: "Show how many prizes a user has won",
		Args:  cobra.ExactArgs(1),
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

			n, err := s.board().Score(cmd.Context(), userID)
			if err != nil {
				return WrapExitError(ExitFailure, ErrCodeStore, "failed to read score", err)
			}
			res := ScoreResult{UserID: userID, Wins: n}
			return s.out.Emit(res, func(w io.Writer) {
				fmt.Fprintf(w, "User %d has won %d prizes\n", res.UserID, res.Wins)
			})
		},
	}
}
