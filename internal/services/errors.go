package services

import "github.com/anonto42/nano-midea/socialgraph/pkg/apperror"

// Outcomes of the follow operations. They compare by kind, so errors.Is also
// matches the store-level apperror sentinels of the same kind.
var (
	ErrSelfFollow       = apperror.New(apperror.InvalidEdge, "cannot follow yourself", nil)
	ErrAlreadyFollowing = apperror.New(apperror.DuplicateEdge, "already following this user", nil)
	ErrNotFollowing     = apperror.New(apperror.NotFound, "not following this user", nil)
)
