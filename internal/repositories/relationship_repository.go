package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"gorm.io/gorm"
)

// RelationshipStore persists directed follow edges. Implementations enforce the
// pair uniqueness and no-self-edge rules in storage, never check-then-insert.
type RelationshipStore interface {
	Create(ctx context.Context, followerID, followedID uint) (*models.Relationship, error)
	FindByFollowerAndFollowed(ctx context.Context, followerID, followedID uint) (*models.Relationship, error)
	ListFollowedBy(ctx context.Context, followerID uint) ([]uint, error)
	ListFollowersOf(ctx context.Context, followedID uint) ([]uint, error)
	CountFollowing(ctx context.Context, followerID uint) (int64, error)
	CountFollowers(ctx context.Context, followedID uint) (int64, error)
	Delete(ctx context.Context, relationshipID uint) error
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

// PostgresRelationshipStore implements RelationshipStore for PostgreSQL
type PostgresRelationshipStore struct {
	db *gorm.DB
}

// NewPostgresRelationshipStore creates a new PostgresRelationshipStore
func NewPostgresRelationshipStore(db *gorm.DB) *PostgresRelationshipStore {
	return &PostgresRelationshipStore{db: db}
}

// Create inserts the edge. Duplicate pairs fail on idx_follower_followed, self
// edges on chk_relationships_not_self, unknown users on the foreign keys.
func (r *PostgresRelationshipStore) Create(ctx context.Context, followerID, followedID uint) (*models.Relationship, error) {
	if followerID == followedID {
		return nil, apperror.Wrap("relationships.create", apperror.InvalidEdge, "follower and followed must differ", nil)
	}

	rel := &models.Relationship{FollowerID: followerID, FollowedID: followedID}
	if err := conn(ctx, r.db).Create(rel).Error; err != nil {
		return nil, classifyPostgres("relationships.create", err, apperror.DuplicateEdge)
	}
	return rel, nil
}

func (r *PostgresRelationshipStore) FindByFollowerAndFollowed(ctx context.Context, followerID, followedID uint) (*models.Relationship, error) {
	var rel models.Relationship
	err := conn(ctx, r.db).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&rel).Error
	if err != nil {
		return nil, classifyPostgres("relationships.find", err, apperror.DuplicateEdge)
	}
	return &rel, nil
}

func (r *PostgresRelationshipStore) ListFollowedBy(ctx context.Context, followerID uint) ([]uint, error) {
	ids := []uint{}
	err := conn(ctx, r.db).Model(&models.Relationship{}).
		Where("follower_id = ?", followerID).
		Order("created_at ASC, id ASC").
		Pluck("followed_id", &ids).Error
	if err != nil {
		return nil, classifyPostgres("relationships.list_followed", err, apperror.DuplicateEdge)
	}
	return ids, nil
}

func (r *PostgresRelationshipStore) ListFollowersOf(ctx context.Context, followedID uint) ([]uint, error) {
	ids := []uint{}
	err := conn(ctx, r.db).Model(&models.Relationship{}).
		Where("followed_id = ?", followedID).
		Order("created_at ASC, id ASC").
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, classifyPostgres("relationships.list_followers", err, apperror.DuplicateEdge)
	}
	return ids, nil
}

func (r *PostgresRelationshipStore) CountFollowing(ctx context.Context, followerID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Relationship{}).Where("follower_id = ?", followerID).Count(&count).Error
	return count, classifyPostgres("relationships.count_following", err, apperror.DuplicateEdge)
}

func (r *PostgresRelationshipStore) CountFollowers(ctx context.Context, followedID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Relationship{}).Where("followed_id = ?", followedID).Count(&count).Error
	return count, classifyPostgres("relationships.count_followers", err, apperror.DuplicateEdge)
}

func (r *PostgresRelationshipStore) Delete(ctx context.Context, relationshipID uint) error {
	res := conn(ctx, r.db).Delete(&models.Relationship{}, relationshipID)
	if res.Error != nil {
		return classifyPostgres("relationships.delete", res.Error, apperror.DuplicateEdge)
	}
	if res.RowsAffected == 0 {
		return apperror.Wrap("relationships.delete", apperror.NotFound, "relationship not found", nil)
	}
	return nil
}

// DeleteByUser removes every edge where userID is follower or followed.
func (r *PostgresRelationshipStore) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := conn(ctx, r.db).
		Where("follower_id = ? OR followed_id = ?", userID, userID).
		Delete(&models.Relationship{})
	if res.Error != nil {
		return 0, classifyPostgres("relationships.delete_by_user", res.Error, apperror.DuplicateEdge)
	}
	return res.RowsAffected, nil
}
