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

// ContentService publishes microposts
type ContentService struct {
	content repositories.ContentRepository
	users   UserDirectory
	logger  *zap.Logger
}

// NewContentService creates a new ContentService
func NewContentService(content repositories.ContentRepository, users UserDirectory, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{content: content, users: users, logger: logger}
}

// Publish stores a micropost by authorID. The MongoDB backend has no foreign
// key, so the author is checked here.
func (s *ContentService) Publish(ctx context.Context, authorID uint, content string) (*models.Micropost, error) {
	req := models.CreateMicropostRequest{AuthorID: authorID, Content: strings.TrimSpace(content)}
	if err := validateStruct("microposts.publish", req); err != nil {
		return nil, err
	}
	if s.users != nil {
		ok, err := s.users.UserExists(ctx, authorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.Wrap("microposts.publish", apperror.ConstraintViolation, fmt.Sprintf("user %d does not exist", authorID), nil)
		}
	}

	post := &models.Micropost{AuthorID: req.AuthorID, Content: req.Content}
	if err := s.content.Create(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("Micropost published", zap.Uint("micropost_id", post.ID), zap.Uint("author_id", authorID))
	return post, nil
}
