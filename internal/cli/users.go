package cli

import (
	"fmt"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/spf13/cobra"
)

func newUserCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Register, inspect, search and delete users",
	}
	cmd.AddCommand(
		newUserRegisterCmd(s),
		newUserShowCmd(s),
		newUserSearchCmd(s),
		newUserDeleteCmd(s),
	)
	return cmd
}

func newUserRegisterCmd(s *session) *cobra.Command {
	var req models.NewUser
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.PasswordConfirmation == "" {
				req.PasswordConfirmation = req.Password
			}
			ctx, cancel := s.context(cmd)
			defer cancel()

			user, err := s.app.Users.Register(ctx, req)
			if err != nil {
				return err
			}
			renderUsers(s.out, []models.User{*user})
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Username, "username", "", "unique username")
	cmd.Flags().StringVar(&req.Email, "email", "", "unique email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&req.PasswordConfirmation, "password-confirmation", "", "defaults to --password")
	return cmd
}

func newUserShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show a user with follower and following counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := s.context(cmd)
			defer cancel()

			user, err := s.app.Users.Get(ctx, id)
			if err != nil {
				return err
			}
			counts, err := s.app.Graph.Counts(ctx, id)
			if err != nil {
				return err
			}
			renderProfile(s.out, user, counts)
			return nil
		},
	}
}

func newUserSearchCmd(s *session) *cobra.Command {
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search users by username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.context(cmd)
			defer cancel()

			users, total, err := s.app.Users.Search(ctx, args[0], page, pageSize)
			if err != nil {
				return err
			}
			compact := make([]models.UserCompact, 0, len(users))
			for i := range users {
				compact = append(compact, users[i].ToCompact())
			}
			renderUserList(s.out, compact, total)
			return nil
		},
	}
	addPageFlags(cmd, &page, &pageSize)
	return cmd
}

func newUserDeleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user with their follows, microposts and messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := s.context(cmd)
			defer cancel()

			if err := s.app.Users.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Deleted user %d\n", id)
			return nil
		},
	}
}
