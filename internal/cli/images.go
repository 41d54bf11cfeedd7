package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/luckydraw/internal/picture"
)

// NewObscureCommand creates the obscure command.
func NewObscureCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "obscure",
		Short: "Write a blurred, pixelated copy of every prize image",
		Long: `Write an obscured copy of every file in the image directory to the
hidden directory under the same name. Unreadable files are skipped and
reported; they do not fail the command.`,
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
			rep, err := p.ObscureAll(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, ErrCodeImage, "failed to obscure images", err)
			}
			return s.out.Emit(rep, func(w io.Writer) { writeReport(w, rep) })
		},
	}
}

func writeReport(w io.Writer, rep picture.Report) {
	fmt.Fprintf(w, "Obscured %d images\n", len(rep.Written))
	for _, sk := range rep.Skipped {
		fmt.Fprintf(w, "  skipped %s: %s\n", sk.Name, sk.Err)
	}
}

// CollageResult is the output of the collage command.
type CollageResult struct {
	UserID  int64  `json:"user_id"`
	Out     string `json:"out,omitempty"`
	Empty   bool   `json:"empty"`
	Cols    int    `json:"cols,omitempty"`
	Rows    int    `json:"rows,omitempty"`
	Placed  int    `json:"placed"`
	Skipped int    `json:"skipped"`
}

// NewCollageCommand creates the collage command.
func NewCollageCommand(rootOpts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "collage <user-id>",
		Short: "Render a user's collage",
		Long: `Render a grid of every prize image: prizes the user won appear as the
original image, the rest as their obscured copy.

Example:
  luckydraw collage 1001 --out collage.png`,
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

			p, err := s.pipeline()
			if err != nil {
				return err
			}
			c, err := p.RenderCollageFor(cmd.Context(), userID)
			if err != nil {
				return WrapExitError(ExitFailure, ErrCodeImage, "failed to render collage", err)
			}

			res := CollageResult{UserID: userID, Placed: len(c.Placed), Skipped: len(c.Skipped)}
			if c.Empty() {
				res.Empty = true
				return s.out.Emit(res, func(w io.Writer) {
					fmt.Fprintf(w, "No collage for user %d: no readable images\n", userID)
				})
			}

			if err := picture.SaveCollage(c, out); err != nil {
				return WrapExitError(ExitFailure, ErrCodeImage, "failed to save collage", err)
			}
			res.Out, res.Cols, res.Rows = out, c.Cols, c.Rows
			return s.out.Emit(res, func(w io.Writer) {
				fmt.Fprintf(w, "Wrote %dx%d collage for user %d to %s\n", c.Cols, c.Rows, userID, out)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "collage.png", "output file")
	return cmd
}
