package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage participants",
	}
	cmd.AddCommand(newUserAddCommand(rootOpts))
	return cmd
}

func newUserAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "add <user-id> <name>",
		Short:   "Register a participant",
		Example: `  luckydraw user add 1001 alice`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user", args[0])
			if err != nil {
				return err
			}

			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.AddUser(cmd.Context(), id, args[1]); err != nil {
				return WrapExitError(ExitFailure, ErrCodeStore, "failed to add user", err)
			}
			u, err := s.store.User(cmd.Context(), id)
			if err != nil {
				return WrapExitError(ExitFailure, ErrCodeStore, "failed to read back user", err)
			}
			s.logger.Info("user added", "user_id", id)

			return s.out.Emit(u, func(w io.Writer) {
				fmt.Fprintf(w, "Added user %d (%s)\n", u.ID, u.Name)
			})
		},
	}
}

// NewUsersCommand creates the users command.
func NewUsersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List participant ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			ids, err := s.store.ListUsers(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, ErrCodeStore, "failed to list users", err)
			}
			return s.out.Emit(ids, func(w io.Writer) {
				for _, id := range ids {
					fmt.Fprintln(w, id)
				}
			})
		},
	}
}
