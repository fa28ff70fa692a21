package repository

import (
	"context"
	"sync"
	"time"

	"letthemcook/internal/user"
)

// MemoryUserRepository — хранилище на карте для тестов и локального запуска.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]user.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]user.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.CreatedAt = time.Now()
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := u
	return &copied, nil
}

func (r *MemoryUserRepository) GetByLogin(ctx context.Context, login string) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.Login == login })
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) find(match func(user.User) bool) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			copied := u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *MemoryUserRepository) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[u.ID]
	if !ok {
		return user.ErrNotFound
	}

	u.PasswordHash = existing.PasswordHash
	u.CreatedAt = existing.CreatedAt
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}

	u.PasswordHash = passwordHash
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.users, id)
	return nil
}
