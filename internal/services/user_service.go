package services

import (
	"context"
	"strings"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService owns user accounts and the cascade that runs when one is deleted.
type UserService struct {
	users      repositories.UserRepository
	graph      *SocialGraph
	content    repositories.ContentRepository
	messages   repositories.MessageRepository
	tx         repositories.Transactor
	bcryptCost int
	pages      FeedOptions
	logger     *zap.Logger
}

// UserServiceDeps groups the collaborators of UserService
type UserServiceDeps struct {
	Users      repositories.UserRepository
	Graph      *SocialGraph
	Content    repositories.ContentRepository
	Messages   repositories.MessageRepository
	Tx         repositories.Transactor
	BcryptCost int
	Pages      FeedOptions
	Logger     *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(deps UserServiceDeps) *UserService {
	if deps.BcryptCost == 0 {
		deps.BcryptCost = bcrypt.DefaultCost
	}
	if deps.Pages.DefaultPageSize < 1 {
		deps.Pages.DefaultPageSize = 10
	}
	if deps.Pages.MaxPageSize < deps.Pages.DefaultPageSize {
		deps.Pages.MaxPageSize = deps.Pages.DefaultPageSize
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.Users,
		graph:      deps.Graph,
		content:    deps.Content,
		messages:   deps.Messages,
		tx:         deps.Tx,
		bcryptCost: deps.BcryptCost,
		pages:      deps.Pages,
		logger:     deps.Logger,
	}
}

// Register validates req and stores a new user with a bcrypt password digest.
func (s *UserService) Register(ctx context.Context, req models.NewUser) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct("users.register", req); err != nil {
		return nil, err
	}

	digest, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, apperror.Wrap("users.register", apperror.Unknown, "failed to hash password", err)
	}

	user := &models.User{
		Name:           req.Name,
		Username:       req.Username,
		Email:          req.Email,
		PasswordDigest: digest,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if apperror.IsKind(err, apperror.Conflict) {
			return nil, apperror.Wrap("users.register", apperror.Conflict, "username or email already taken", err)
		}
		return nil, err
	}

	s.logger.Info("User registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate returns the user whose email and password match.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if apperror.IsKind(err, apperror.NotFound) {
		return nil, apperror.Wrap("users.authenticate", apperror.Unauthenticated, "invalid email or password", nil)
	}
	if err != nil {
		return nil, err
	}
	if !VerifyPassword(user.PasswordDigest, password) {
		return nil, apperror.Wrap("users.authenticate", apperror.Unauthenticated, "invalid email or password", nil)
	}
	return user, nil
}

// UserExists implements UserDirectory.
func (s *UserService) UserExists(ctx context.Context, id uint) (bool, error) {
	return s.users.Exists(ctx, id)
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// Search returns one page of users whose username contains query, ordered by
// username, and the total number of matches.
func (s *UserService) Search(ctx context.Context, query string, page, pageSize int) ([]models.User, int64, error) {
	page, pageSize = normalizePage(page, pageSize, s.pages.DefaultPageSize, s.pages.MaxPageSize)
	return s.users.SearchUsers(ctx, strings.TrimSpace(query), pageOffset(page, pageSize), pageSize)
}

// Delete removes the user together with their relationships, microposts and
// messages in one transaction. PostgreSQL statements run first; deletes on
// stores outside the transaction (Neo4j, MongoDB) run last, right before the
// commit, so any earlier failure leaves them untouched and their own failure
// rolls PostgreSQL back.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Wrap("users.delete", apperror.NotFound, "user not found", nil)
	}

	var edges, posts, messages int64
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		var external []func() error
		step := func(joinsTx bool, fn func() error) error {
			if joinsTx {
				return fn()
			}
			external = append(external, fn)
			return nil
		}

		err := step(s.graph.JoinsTx(), func() (err error) {
			edges, err = s.graph.OnUserDeleted(ctx, id)
			return err
		})
		if err != nil {
			return err
		}
		err = step(repositories.JoinsTx(s.content), func() (err error) {
			posts, err = s.content.DeleteByAuthor(ctx, id)
			return err
		})
		if err != nil {
			return err
		}
		if messages, err = s.messages.DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := s.users.DeleteUser(ctx, id); err != nil {
			return err
		}

		for _, fn := range external {
			if err := fn(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to delete user", zap.Uint("user_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("User deleted",
		zap.Uint("user_id", id),
		zap.Int64("relationships", edges),
		zap.Int64("microposts", posts),
		zap.Int64("messages", messages),
	)
	return nil
}
