package cli

import (
	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/spf13/cobra"
)

func newPostCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "post <author-id> <content>",
		Short: "Publish a micropost",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := s.context(cmd)
			defer cancel()

			post, err := s.app.Content.Publish(ctx, id, args[1])
			if err != nil {
				return err
			}
			renderPosts(s.out, []models.Micropost{*post})
			return nil
		},
	}
}

func newFeedCmd(s *session) *cobra.Command {
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "feed <user-id>",
		Short: "Show a user's feed, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := s.context(cmd)
			defer cancel()

			feed, err := s.app.Feed.BuildFeed(ctx, id, page, pageSize)
			if err != nil {
				return err
			}
			renderFeed(s.out, feed)
			return nil
		},
	}
	addPageFlags(cmd, &page, &pageSize)
	return cmd
}
