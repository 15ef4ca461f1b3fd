package repository

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"unicode/utf8"

	"elibrary/internal/apperror"
	"elibrary/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// UserRepository defines the identity operations on user rows.
type UserRepository interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	Register(ctx context.Context, username, passwordHash string) (*models.User, error)
	Authenticate(ctx context.Context, username, passwordHash string) (*models.User, error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, apperror.Storage("users.exists", err)
	}
	return count > 0, nil
}

// Register inserts a new account. The existence check only short-circuits the
// common case; UNIQUE (username) decides races between concurrent registrations.
func (r *userRepository) Register(ctx context.Context, username, passwordHash string) (*models.User, error) {
	const op = "users.register"

	if strings.TrimSpace(username) == "" {
		return nil, apperror.Validation(op, "username is required")
	}
	if utf8.RuneCountInString(username) > models.MaxFieldLength {
		return nil, apperror.Validation(op, "username must be at most %d characters", models.MaxFieldLength)
	}
	if passwordHash == "" {
		return nil, apperror.Validation(op, "password is required")
	}

	exists, err := r.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict(op, "username already exists")
	}

	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict(op, "username already exists")
		}
		return nil, apperror.Storage(op, err)
	}
	return user, nil
}

// Authenticate compares the supplied hash with the stored one byte for byte.
func (r *userRepository) Authenticate(ctx context.Context, username, passwordHash string) (*models.User, error) {
	const op = "users.login"

	var user models.User
	// check for the error if the user is not found
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(op, "user not found")
		}
		return nil, apperror.Storage(op, err)
	}

	if subtle.ConstantTimeCompare([]byte(user.PasswordHash), []byte(passwordHash)) != 1 {
		return nil, apperror.Unauthorized(op, "invalid password")
	}
	return &user, nil
}
