package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"letthemcook/internal/user"
	"letthemcook/pkg/hash"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidCreds = errors.New("invalid credentials")
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByLogin(ctx context.Context, login string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Register(ctx context.Context, login, email, password string) (*user.User, error) {
	if _, err := s.repo.GetByLogin(ctx, login); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("check login: %w", err)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	passwordHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Login:        login,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login ищет пользователя по логину либо email — как в мобильном клиенте,
// который позволяет вводить любой из них.
func (s *UserService) Login(ctx context.Context, login, email, password string) (*user.User, error) {
	var (
		u   *user.User
		err error
	)

	switch {
	case login != "":
		u, err = s.repo.GetByLogin(ctx, login)
	case email != "":
		u, err = s.repo.GetByEmail(ctx, email)
	default:
		return nil, ErrInvalidCreds
	}

	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrInvalidCreds
	}
	if err != nil {
		return nil, err
	}

	if !hash.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCreds
	}

	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists — проверка для смежных подсистем перед выпуском токенов.
func (s *UserService) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, user.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) Update(ctx context.Context, u *user.User) error {
	return s.repo.Update(ctx, u)
}

func (s *UserService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !hash.CheckPassword(u.PasswordHash, oldPassword) {
		return ErrInvalidCreds
	}

	passwordHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
