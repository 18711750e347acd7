package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"gorm.io/gorm"
)

// ContentStore is the read side the feed needs. The author set is pushed down to
// storage; results are ordered created_at DESC, id DESC.
type ContentStore interface {
	QueryByAuthors(ctx context.Context, authorIDs []uint, offset, limit int) ([]models.Micropost, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (int64, error)
}

// ContentRepository adds the write side used by publishing and user deletion.
type ContentRepository interface {
	ContentStore
	Create(ctx context.Context, post *models.Micropost) error
	DeleteByAuthor(ctx context.Context, authorID uint) (int64, error)
}

// PostgresMicropostRepository implements ContentRepository for PostgreSQL
type PostgresMicropostRepository struct {
	db *gorm.DB
}

// NewPostgresMicropostRepository creates a new PostgresMicropostRepository
func NewPostgresMicropostRepository(db *gorm.DB) *PostgresMicropostRepository {
	return &PostgresMicropostRepository{db: db}
}

func (r *PostgresMicropostRepository) Create(ctx context.Context, post *models.Micropost) error {
	err := conn(ctx, r.db).Create(post).Error
	return classifyPostgres("microposts.create", err, apperror.Conflict)
}

func (r *PostgresMicropostRepository) QueryByAuthors(ctx context.Context, authorIDs []uint, offset, limit int) ([]models.Micropost, error) {
	posts := []models.Micropost{}
	if len(authorIDs) == 0 {
		return posts, nil
	}
	err := conn(ctx, r.db).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, classifyPostgres("microposts.query_by_authors", err, apperror.Conflict)
	}
	return posts, nil
}

func (r *PostgresMicropostRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (int64, error) {
	if len(authorIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := conn(ctx, r.db).Model(&models.Micropost{}).Where("author_id IN ?", authorIDs).Count(&count).Error
	return count, classifyPostgres("microposts.count_by_authors", err, apperror.Conflict)
}

func (r *PostgresMicropostRepository) DeleteByAuthor(ctx context.Context, authorID uint) (int64, error) {
	res := conn(ctx, r.db).Where("author_id = ?", authorID).Delete(&models.Micropost{})
	if res.Error != nil {
		return 0, classifyPostgres("microposts.delete_by_author", res.Error, apperror.Conflict)
	}
	return res.RowsAffected, nil
}
