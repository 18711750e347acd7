package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFollowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "follow <follower-id> <followed-id>",
		Short: "Follow a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args...)
			if err != nil {
				return err
			}
			ctx, cancel := s.context(cmd)
			defer cancel()

			rel, err := s.app.Graph.Follow(ctx, ids[0], ids[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "User %d now follows user %d (relationship %d)\n", rel.FollowerID, rel.FollowedID, rel.ID)
			return nil
		},
	}
}

func newUnfollowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "unfollow <follower-id> <followed-id>",
		Short: "Unfollow a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args...)
			if err != nil {
				return err
			}
			ctx, cancel := s.context(cmd)
			defer cancel()

			if err := s.app.Graph.Unfollow(ctx, ids[0], ids[1]); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "User %d no longer follows user %d\n", ids[0], ids[1])
			return nil
		},
	}
}

func newFollowingCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "following <user-id>",
		Short: "List the users a user follows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := s.context(cmd)
			defer cancel()

			ids, err := s.app.Graph.FollowedUsers(ctx, id)
			if err != nil {
				return err
			}
			renderIDs(s.out, "Following", ids)
			return nil
		},
	}
}

func newFollowersCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "followers <user-id>",
		Short: "List a user's followers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := s.context(cmd)
			defer cancel()

			ids, err := s.app.Graph.Followers(ctx, id)
			if err != nil {
				return err
			}
			renderIDs(s.out, "Follower", ids)
			return nil
		},
	}
}

func newIsFollowingCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "is-following <follower-id> <followed-id>",
		Short: "Report whether one user follows another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args...)
			if err != nil {
				return err
			}
			ctx, cancel := s.context(cmd)
			defer cancel()

			following, err := s.app.Graph.IsFollowing(ctx, ids[0], ids[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(s.out, following)
			return nil
		},
	}
}
