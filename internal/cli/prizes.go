package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/luckydraw/internal/ledger"
)

// PrizeRow is one line of the prizes listing.
type PrizeRow struct {
	ledger.Prize
	Winners int `json:"winners"`
}

// NewPrizesCommand creates the prizes command.
func NewPrizesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prizes",
		Short: "List prizes with their winner counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			prizes, err := s.store.ListPrizes(ctx)
			if err != nil {
				return WrapExitError(ExitFailure, ErrCodeStore, "failed to list prizes", err)
			}

			board := s.board()
			rows := make([]PrizeRow, 0, len(prizes))
			for _, p := range prizes {
				n, err := board.PrizeWinners(ctx, p.ID)
				if err != nil {
					return WrapExitError(ExitFailure, ErrCodeStore, "failed to count winners", err)
				}
				rows = append(rows, PrizeRow{Prize: p, Winners: n})
			}

			return s.out.Emit(rows, func(w io.Writer) { writePrizes(w, rows) })
		},
	}
}

func writePrizes(w io.Writer, rows []PrizeRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No prizes registered.")
		return
	}
	fmt.Fprintf(w, "%4s  %-24s %-4s %7s\n", "ID", "IMAGE", "USED", "WINNERS")
	for _, r := range rows {
		used := "no"
		if r.Used {
			used = "yes"
		}
		fmt.Fprintf(w, "%4d  %-24s %-4s %7d\n", r.ID, r.Image, used, r.Winners)
	}
}

// NewRetireCommand creates the retire command.
func NewRetireCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "retire <prize-id>",
		Short: "Mark a prize used so it is no longer drawn",
		Long: `Mark a prize used. Used prizes are never returned by draw.
Unknown or already used prizes are accepted silently.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("prize", args[0])
			if err != nil {
				return err
			}

			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.MarkPrizeUsed(cmd.Context(), id); err != nil {
				return WrapExitError(ExitFailure, ErrCodeStore, "failed to retire prize", err)
			}
			return s.out.Emit(map[string]int64{"prize_id": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Prize %d retired\n", id)
			})
		},
	}
}
