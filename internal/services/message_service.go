package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"go.uber.org/zap"
)

// MessageService sends and lists private messages
type MessageService struct {
	messages repositories.MessageRepository
	users    UserDirectory
	pages    FeedOptions
	logger   *zap.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(messages repositories.MessageRepository, users UserDirectory, pages FeedOptions, logger *zap.Logger) *MessageService {
	if pages.DefaultPageSize < 1 {
		pages.DefaultPageSize = 10
	}
	if pages.MaxPageSize < pages.DefaultPageSize {
		pages.MaxPageSize = pages.DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{messages: messages, users: users, pages: pages, logger: logger}
}

// Send delivers content from one user to another. Both must exist.
func (s *MessageService) Send(ctx context.Context, fromUserID, toUserID uint, content string) (*models.Message, error) {
	req := models.SendMessageRequest{FromUserID: fromUserID, ToUserID: toUserID, Content: strings.TrimSpace(content)}
	if err := validateStruct("messages.send", req); err != nil {
		return nil, err
	}
	for _, id := range []uint{fromUserID, toUserID} {
		ok, err := s.users.UserExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.Wrap("messages.send", apperror.ConstraintViolation, fmt.Sprintf("user %d does not exist", id), nil)
		}
	}

	msg := &models.Message{FromUserID: req.FromUserID, ToUserID: req.ToUserID, Content: req.Content}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Info("Message sent",
		zap.Uint("message_id", msg.ID),
		zap.Uint("from_user_id", fromUserID),
		zap.Uint("to_user_id", toUserID),
	)
	return msg, nil
}

// Inbox returns messages received by userID, newest first.
func (s *MessageService) Inbox(ctx context.Context, userID uint, page, pageSize int) ([]models.Message, int64, error) {
	page, pageSize = normalizePage(page, pageSize, s.pages.DefaultPageSize, s.pages.MaxPageSize)
	return s.messages.GetReceived(ctx, userID, pageOffset(page, pageSize), pageSize)
}

// Outbox returns messages sent by userID, newest first.
func (s *MessageService) Outbox(ctx context.Context, userID uint, page, pageSize int) ([]models.Message, int64, error) {
	page, pageSize = normalizePage(page, pageSize, s.pages.DefaultPageSize, s.pages.MaxPageSize)
	return s.messages.GetSent(ctx, userID, pageOffset(page, pageSize), pageSize)
}
