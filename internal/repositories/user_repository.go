package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	SearchUsers(ctx context.Context, query string, offset, limit int) ([]models.User, int64, error)
	DeleteUser(ctx context.Context, id uint) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := conn(ctx, r.db).Create(user).Error
	return classifyPostgres("users.create", err, apperror.Conflict)
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).First(&user, id).Error; err != nil {
		return nil, classifyPostgres("users.get", err, apperror.Conflict)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by lower-cased email from PostgreSQL
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, classifyPostgres("users.get_by_email", err, apperror.Conflict)
	}
	return &user, nil
}

func (r *PostgresUserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, classifyPostgres("users.exists", err, apperror.Conflict)
	}
	return count > 0, nil
}

// SearchUsers returns users whose username contains query, ordered by username,
// along with the total number of matches.
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, query string, offset, limit int) ([]models.User, int64, error) {
	users := []models.User{}
	var total int64

	scope := conn(ctx, r.db).Model(&models.User{}).Where("username LIKE ?", "%"+escapeLike(query)+"%").Session(&gorm.Session{})
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, classifyPostgres("users.search", err, apperror.Conflict)
	}
	err := scope.Order("username ASC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, classifyPostgres("users.search", err, apperror.Conflict)
	}
	return users, total, nil
}

// DeleteUser deletes a user by ID from PostgreSQL
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&models.User{}, id)
	if res.Error != nil {
		return classifyPostgres("users.delete", res.Error, apperror.Conflict)
	}
	if res.RowsAffected == 0 {
		return apperror.Wrap("users.delete", apperror.NotFound, "user not found", nil)
	}
	return nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
