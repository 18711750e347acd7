package cli

import (
	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/spf13/cobra"
)

func newMessageCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Send and list private messages",
	}

	send := &cobra.Command{
		Use:   "send <from-id> <to-id> <content>",
		Short: "Send a message",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[0], args[1])
			if err != nil {
				return err
			}
			ctx, cancel := s.context(cmd)
			defer cancel()

			msg, err := s.app.Messages.Send(ctx, ids[0], ids[1], args[2])
			if err != nil {
				return err
			}
			renderMessages(s.out, []models.Message{*msg}, 1)
			return nil
		},
	}

	var page, pageSize int
	inbox := &cobra.Command{
		Use:   "inbox <user-id>",
		Short: "List received messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := s.context(cmd)
			defer cancel()

			msgs, total, err := s.app.Messages.Inbox(ctx, id, page, pageSize)
			if err != nil {
				return err
			}
			renderMessages(s.out, msgs, total)
			return nil
		},
	}
	addPageFlags(inbox, &page, &pageSize)

	outbox := &cobra.Command{
		Use:   "outbox <user-id>",
		Short: "List sent messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := s.context(cmd)
			defer cancel()

			msgs, total, err := s.app.Messages.Outbox(ctx, id, page, pageSize)
			if err != nil {
				return err
			}
			renderMessages(s.out, msgs, total)
			return nil
		},
	}
	addPageFlags(outbox, &page, &pageSize)

	cmd.AddCommand(send, inbox, outbox)
	return cmd
}
