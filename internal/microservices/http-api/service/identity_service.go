package service

import (
	"context"
	"log/slog"
	"time"

	"elibrary/internal/metrics"
	"elibrary/internal/microservices/http-api/models"
	"elibrary/internal/microservices/http-api/repository"
)

// IdentityService fronts the user repository. Passwords arrive already
// hashed by the Identity Provider and are passed through untouched.
type IdentityService interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	Register(ctx context.Context, username, passwordHash string) (*models.User, error)
	Login(ctx context.Context, username, passwordHash string) (*models.User, error)
}

type identityService struct {
	repo    repository.UserRepository
	metrics metrics.Recorder
	logger  *slog.Logger
}

func NewIdentityService(repo repository.UserRepository, recorder metrics.Recorder, logger *slog.Logger) IdentityService {
	return &identityService{repo: repo, metrics: recorder, logger: logger}
}

func (s *identityService) UsernameExists(ctx context.Context, username string) (bool, error) {
	start := time.Now()
	exists, err := s.repo.UsernameExists(ctx, username)
	observe(s.metrics, s.logger, "users.check", err, start)
	return exists, err
}

func (s *identityService) Register(ctx context.Context, username, passwordHash string) (*models.User, error) {
	start := time.Now()
	user, err := s.repo.Register(ctx, username, passwordHash)
	observe(s.metrics, s.logger, "users.register", err, start)
	return user, err
}

func (s *identityService) Login(ctx context.Context, username, passwordHash string) (*models.User, error) {
	start := time.Now()
	user, err := s.repo.Authenticate(ctx, username, passwordHash)
	observe(s.metrics, s.logger, "users.login", err, start)
	return user, err
}
