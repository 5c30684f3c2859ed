package user

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository defines persistence behavior for the User entity. Emails passed
// to GetByEmail are expected to be normalized (lower-cased, trimmed) already.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InMemoryRepository keeps users in a map. It backs the service tests and the
// no-database mode, and enforces the same email uniqueness the Postgres
// schema does so both stores fail the same way.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

var _ Repository = (*InMemoryRepository)(nil)

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{users: make(map[uuid.UUID]User, len(seed))}
	for _, u := range seed {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *InMemoryRepository) List(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID.String() < users[j].ID.String()
	})

	return users, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Create(ctx context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := checkColumnLimits(u); err != nil {
		return User{}, err
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return User{}, ErrDuplicateEmail
		}
	}

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return User{}, ErrNotFound
	}
	if err := checkColumnLimits(u); err != nil {
		return User{}, err
	}
	for _, existing := range r.users {
		if existing.ID != u.ID && existing.Email == u.Email {
			return User{}, ErrDuplicateEmail
		}
	}

	r.users[u.ID] = u
	return u, nil
}

// checkColumnLimits rejects values the varchar columns of the Postgres
// schema could not hold, so the no-database mode fails the same way.
func checkColumnLimits(u User) error {
	limits := []struct {
		column string
		value  string
		max    int
	}{
		{"first_name", u.FirstName, 100},
		{"last_name", u.LastName, 100},
		{"email", u.Email, 256},
		{"phone", u.Phone, 20},
		{"occupation", u.Occupation, 100},
		{"sex", u.Sex, 10},
	}
	for _, l := range limits {
		if len(l.value) > l.max {
			return fmt.Errorf("value too long for column %q (max %d)", l.column, l.max)
		}
	}
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}
