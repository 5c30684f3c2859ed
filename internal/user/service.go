package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements the five user operations. The duplicate-email pre-check
// is best-effort; the store's unique constraint is the authoritative guard
// and its violation surfaces as the same ErrDuplicateEmail.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(ctx context.Context, in Input) (User, error) {
	if _, err := s.repo.GetByEmail(ctx, in.normalizedEmail()); err == nil {
		return User{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.Error("email lookup failed", zap.Error(err))
		return User{}, err
	}

	u := User{CreatedAt: time.Now().UTC()}
	if err := in.apply(&u); err != nil {
		return User{}, err
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		if !errors.Is(err, ErrDuplicateEmail) {
			s.logger.Error("create failed", zap.Error(err))
		}
		return User{}, err
	}

	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("fetch failed", zap.String("id", id.String()), zap.Error(err))
		}
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetAll(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("list failed", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("fetch for update failed", zap.String("id", id.String()), zap.Error(err))
		}
		return User{}, err
	}

	if existing, err := s.repo.GetByEmail(ctx, in.normalizedEmail()); err == nil {
		if existing.ID != id {
			return User{}, ErrDuplicateEmail
		}
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.Error("email lookup failed", zap.Error(err))
		return User{}, err
	}

	if err := in.apply(&u); err != nil {
		return User{}, err
	}
	now := time.Now().UTC()
	u.UpdatedAt = &now

	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrDuplicateEmail) {
			s.logger.Error("update failed", zap.String("id", id.String()), zap.Error(err))
		}
		return User{}, err
	}

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("delete failed", zap.String("id", id.String()), zap.Error(err))
		}
		return err
	}
	return nil
}
