package services

import (
	"context"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FollowLister is the part of SocialGraph the feed needs.
type FollowLister interface {
	FollowedUsers(ctx context.Context, userID uint) ([]uint, error)
}

// FeedOptions bounds feed page sizes.
type FeedOptions struct {
	DefaultPageSize int
	MaxPageSize     int
}

// FeedAssembler builds a user's feed: the microposts of everyone they follow
// plus their own, newest first.
type FeedAssembler struct {
	graph   FollowLister
	content repositories.ContentStore
	opts    FeedOptions
	logger  *zap.Logger
}

// NewFeedAssembler creates a new FeedAssembler
func NewFeedAssembler(graph FollowLister, content repositories.ContentStore, opts FeedOptions, logger *zap.Logger) *FeedAssembler {
	if opts.DefaultPageSize < 1 {
		opts.DefaultPageSize = 10
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = opts.DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedAssembler{graph: graph, content: content, opts: opts, logger: logger}
}

// BuildFeed returns page `page` of userID's feed. The author set is read fresh
// on every call, so a follow or unfollow shows up on the next request.
//
// The page and the total are read concurrently, so a transaction carried by
// ctx is dropped and both reads use their own connections.
func (f *FeedAssembler) BuildFeed(ctx context.Context, userID uint, page, pageSize int) (*models.FeedPage, error) {
	ctx = repositories.WithoutTx(ctx)
	page, pageSize = normalizePage(page, pageSize, f.opts.DefaultPageSize, f.opts.MaxPageSize)

	followed, err := f.graph.FollowedUsers(ctx, userID)
	if err != nil {
		return nil, err
	}
	authors := feedAuthors(userID, followed)

	var (
		items []models.Micropost
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = f.content.QueryByAuthors(gctx, authors, pageOffset(page, pageSize), pageSize)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = f.content.CountByAuthors(gctx, authors)
		return err
	})
	if err := g.Wait(); err != nil {
		f.logger.Error("Failed to build feed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}
	if items == nil {
		items = []models.Micropost{}
	}

	pages := totalPages(total, pageSize)
	return &models.FeedPage{
		Items:           items,
		Page:            page,
		PageSize:        pageSize,
		TotalItems:      total,
		TotalPages:      pages,
		HasNextPage:     page < pages,
		HasPreviousPage: page > 1,
	}, nil
}

// feedAuthors returns followed plus userID, without duplicates.
func feedAuthors(userID uint, followed []uint) []uint {
	seen := make(map[uint]struct{}, len(followed)+1)
	authors := make([]uint, 0, len(followed)+1)
	for _, id := range append([]uint{userID}, followed...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		authors = append(authors, id)
	}
	return authors
}
