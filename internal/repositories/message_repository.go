package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for private message storage
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetReceived(ctx context.Context, userID uint, offset, limit int) ([]models.Message, int64, error)
	GetSent(ctx context.Context, userID uint, offset, limit int) ([]models.Message, int64, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

type postgresMessageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) MessageRepository {
	return &postgresMessageRepository{db: db}
}

func (r *postgresMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	err := conn(ctx, r.db).Create(msg).Error
	return classifyPostgres("messages.create", err, apperror.Conflict)
}

func (r *postgresMessageRepository) GetReceived(ctx context.Context, userID uint, offset, limit int) ([]models.Message, int64, error) {
	return r.page(ctx, "messages.received", "to_user_id = ?", userID, offset, limit)
}

func (r *postgresMessageRepository) GetSent(ctx context.Context, userID uint, offset, limit int) ([]models.Message, int64, error) {
	return r.page(ctx, "messages.sent", "from_user_id = ?", userID, offset, limit)
}

// DeleteByUser removes messages the user sent or received
func (r *postgresMessageRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := conn(ctx, r.db).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Delete(&models.Message{})
	if res.Error != nil {
		return 0, classifyPostgres("messages.delete_by_user", res.Error, apperror.Conflict)
	}
	return res.RowsAffected, nil
}

func (r *postgresMessageRepository) page(ctx context.Context, op, cond string, userID uint, offset, limit int) ([]models.Message, int64, error) {
	messages := []models.Message{}
	var total int64

	scope := conn(ctx, r.db).Model(&models.Message{}).Where(cond, userID).Session(&gorm.Session{})
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, classifyPostgres(op, err, apperror.Conflict)
	}
	err := scope.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, 0, classifyPostgres(op, err, apperror.Conflict)
	}
	return messages, total, nil
}
