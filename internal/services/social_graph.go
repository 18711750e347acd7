package services

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"go.uber.org/zap"
)

// UserDirectory answers whether a user id refers to an existing user.
type UserDirectory interface {
	UserExists(ctx context.Context, id uint) (bool, error)
}

// UserDirectoryFunc adapts a function, typically UserRepository.Exists, to UserDirectory.
type UserDirectoryFunc func(ctx context.Context, id uint) (bool, error)

func (f UserDirectoryFunc) UserExists(ctx context.Context, id uint) (bool, error) {
	return f(ctx, id)
}

// SocialGraph exposes the follow relation over a RelationshipStore. It holds no
// state of its own; every answer reflects the store at the time of the call.
type SocialGraph struct {
	store  repositories.RelationshipStore
	users  UserDirectory
	logger *zap.Logger
}

// NewSocialGraph creates a new SocialGraph. users may be nil when the store
// enforces user existence itself.
func NewSocialGraph(store repositories.RelationshipStore, users UserDirectory, logger *zap.Logger) *SocialGraph {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocialGraph{store: store, users: users, logger: logger}
}

// IsFollowing reports whether followerID follows followedID. A user never
// follows themselves.
func (g *SocialGraph) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	if followerID == followedID {
		return false, nil
	}
	_, err := g.store.FindByFollowerAndFollowed(ctx, followerID, followedID)
	if apperror.IsKind(err, apperror.NotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Follow creates the edge followerID -> followedID. Following someone twice
// fails with ErrAlreadyFollowing; the store's unique index decides, so of N
// concurrent calls exactly one succeeds.
func (g *SocialGraph) Follow(ctx context.Context, followerID, followedID uint) (*models.Relationship, error) {
	if followerID == followedID {
		return nil, ErrSelfFollow
	}
	if err := g.requireUsers(ctx, "graph.follow", followerID, followedID); err != nil {
		return nil, err
	}

	rel, err := g.store.Create(ctx, followerID, followedID)
	if err != nil {
		switch apperror.KindOf(err) {
		case apperror.DuplicateEdge:
			return nil, apperror.Wrap("graph.follow", apperror.DuplicateEdge, "already following this user", err)
		case apperror.InvalidEdge:
			return nil, apperror.Wrap("graph.follow", apperror.InvalidEdge, "cannot follow yourself", err)
		}
		g.logger.Error("Failed to follow user",
			zap.Uint("follower_id", followerID),
			zap.Uint("followed_id", followedID),
			zap.Error(err),
		)
		return nil, err
	}

	g.logger.Info("User followed",
		zap.Uint("relationship_id", rel.ID),
		zap.Uint("follower_id", followerID),
		zap.Uint("followed_id", followedID),
	)
	return rel, nil
}

// Unfollow removes the edge followerID -> followedID. When two callers race,
// the loser gets ErrNotFollowing.
func (g *SocialGraph) Unfollow(ctx context.Context, followerID, followedID uint) error {
	rel, err := g.store.FindByFollowerAndFollowed(ctx, followerID, followedID)
	if apperror.IsKind(err, apperror.NotFound) {
		return apperror.Wrap("graph.unfollow", apperror.NotFound, "not following this user", err)
	}
	if err != nil {
		return err
	}

	if err := g.store.Delete(ctx, rel.ID); err != nil {
		if apperror.IsKind(err, apperror.NotFound) {
			return apperror.Wrap("graph.unfollow", apperror.NotFound, "not following this user", err)
		}
		g.logger.Error("Failed to unfollow user",
			zap.Uint("follower_id", followerID),
			zap.Uint("followed_id", followedID),
			zap.Error(err),
		)
		return err
	}

	g.logger.Info("User unfollowed",
		zap.Uint("follower_id", followerID),
		zap.Uint("followed_id", followedID),
	)
	return nil
}

// Followers returns the ids of users following userID, oldest edge first.
func (g *SocialGraph) Followers(ctx context.Context, userID uint) ([]uint, error) {
	return g.store.ListFollowersOf(ctx, userID)
}

// FollowedUsers returns the ids of users userID follows, oldest edge first.
func (g *SocialGraph) FollowedUsers(ctx context.Context, userID uint) ([]uint, error) {
	return g.store.ListFollowedBy(ctx, userID)
}

// Counts returns the follower and following totals for userID.
func (g *SocialGraph) Counts(ctx context.Context, userID uint) (models.FollowCounts, error) {
	followers, err := g.store.CountFollowers(ctx, userID)
	if err != nil {
		return models.FollowCounts{}, err
	}
	following, err := g.store.CountFollowing(ctx, userID)
	if err != nil {
		return models.FollowCounts{}, err
	}
	return models.FollowCounts{Followers: followers, Following: following}, nil
}

// OnUserDeleted removes every edge in which userID is follower or followed and
// returns how many were removed.
func (g *SocialGraph) OnUserDeleted(ctx context.Context, userID uint) (int64, error) {
	n, err := g.store.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	g.logger.Debug("Removed relationships of deleted user",
		zap.Uint("user_id", userID),
		zap.Int64("count", n),
	)
	return n, nil
}

// JoinsTx reports whether the underlying store takes part in the PostgreSQL
// transaction carried by ctx.
func (g *SocialGraph) JoinsTx() bool {
	return repositories.JoinsTx(g.store)
}

func (g *SocialGraph) requireUsers(ctx context.Context, op string, ids ...uint) error {
	if g.users == nil {
		return nil
	}
	for _, id := range ids {
		ok, err := g.users.UserExists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Wrap(op, apperror.ConstraintViolation, fmt.Sprintf("user %d does not exist", id), nil)
		}
	}
	return nil
}
