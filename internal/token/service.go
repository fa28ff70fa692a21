package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"letthemcook/internal/metrics"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrNotFound     = errors.New("token not found")
)

// Repository — хранилище токенов, не больше одной живой записи на (userID, kind).
type Repository interface {
	Find(ctx context.Context, userID string, kind Kind) (*Token, error)
	// Upsert безусловно перезаписывает запись (ротация при login/registration).
	Upsert(ctx context.Context, t *Token) error
	// Acquire вставляет кандидата, только если живой записи нет (просроченную
	// перезаписывает), и возвращает запись, которая в итоге хранится. Атомарность
	// относительно проверки существования обязательна: при гонке выигрывает ровно
	// один писатель, остальные получают его строку.
	Acquire(ctx context.Context, candidate *Token, now time.Time) (*Token, error)
	Delete(ctx context.Context, userID string, kind Kind) error
}

// Manager отвечает за жизненный цикл токенов: выпуск пары, ротацию и проверку.
// Токен считается действительным, только если подпись верна И в сторе лежит
// ровно эта строка с непрошедшим сроком.
type Manager struct {
	codec *Codec
	repo  Repository
	now   func() time.Time
}

type ManagerOption func(*Manager)

// WithNow подменяет источник времени (для тестов со сдвигом часов).
func WithNow(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

func NewManager(codec *Codec, repo Repository, opts ...ManagerOption) *Manager {
	m := &Manager{
		codec: codec,
		repo:  repo,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// IssuePair выпускает свежую пару access+refresh с перезаписью прежних записей.
// Используется при регистрации и полном логине.
func (m *Manager) IssuePair(ctx context.Context, userID string) (access, refresh string, err error) {
	access, err = m.rotate(ctx, userID, KindAccess)
	if err != nil {
		return "", "", err
	}

	refresh, err = m.rotate(ctx, userID, KindRefresh)
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

func (m *Manager) rotate(ctx context.Context, userID string, kind Kind) (string, error) {
	now := m.now()

	signed, expiresAt, err := m.codec.Issue(userID, kind, now)
	if err != nil {
		return "", fmt.Errorf("issue %s token: %w", kind, err)
	}

	t := &Token{
		UserID:    userID,
		Kind:      kind,
		Token:     signed,
		ExpiresAt: expiresAt,
	}

	if err := m.repo.Upsert(ctx, t); err != nil {
		return "", fmt.Errorf("save %s token: %w", kind, err)
	}

	metrics.TokensIssuedTotal.WithLabelValues(string(kind)).Inc()
	return signed, nil
}

// EnsureAccess возвращает живой access-токен пользователя; если записи нет или
// она просрочена — выпускает новый. Живой токен возвращается как есть,
// без лишней ротации.
func (m *Manager) EnsureAccess(ctx context.Context, userID string) (string, error) {
	return m.ensure(ctx, userID, KindAccess)
}

func (m *Manager) EnsureRefresh(ctx context.Context, userID string) (string, error) {
	return m.ensure(ctx, userID, KindRefresh)
}

func (m *Manager) ensure(ctx context.Context, userID string, kind Kind) (string, error) {
	now := m.now()

	existing, err := m.repo.Find(ctx, userID, kind)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("find %s token: %w", kind, err)
	}
	if existing != nil && !existing.ExpiredAt(now) {
		return existing.Token, nil
	}

	signed, expiresAt, err := m.codec.Issue(userID, kind, now)
	if err != nil {
		return "", fmt.Errorf("issue %s token: %w", kind, err)
	}

	candidate := &Token{
		UserID:    userID,
		Kind:      kind,
		Token:     signed,
		ExpiresAt: expiresAt,
	}

	// При гонке конкурирующих ensure стор оставляет одну запись; всем
	// возвращается именно она, чтобы ни одна выданная строка не потерялась.
	stored, err := m.repo.Acquire(ctx, candidate, now)
	if err != nil {
		return "", fmt.Errorf("save %s token: %w", kind, err)
	}

	if stored.Token == signed {
		metrics.TokensIssuedTotal.WithLabelValues(string(kind)).Inc()
	}

	return stored.Token, nil
}

// Validate проверяет предъявленную строку: подпись, совпадение вида, наличие
// ровно этой строки в сторе и срок по записи стора. Несовпадение строки —
// признак ротации: подпись старого токена ещё верна, но он уже отозван.
func (m *Manager) Validate(ctx context.Context, raw string, kind Kind) (string, error) {
	parsed, err := m.codec.Parse(raw)
	if err != nil {
		metrics.TokenValidationsTotal.WithLabelValues(string(kind), "invalid").Inc()
		return "", ErrInvalidToken
	}
	if parsed.Kind != kind {
		metrics.TokenValidationsTotal.WithLabelValues(string(kind), "invalid").Inc()
		return "", ErrInvalidToken
	}

	rec, err := m.repo.Find(ctx, parsed.UserID, kind)
	if errors.Is(err, ErrNotFound) {
		metrics.TokenValidationsTotal.WithLabelValues(string(kind), "invalid").Inc()
		return "", ErrInvalidToken
	}
	if err != nil {
		metrics.TokenValidationsTotal.WithLabelValues(string(kind), "error").Inc()
		return "", fmt.Errorf("find %s token: %w", kind, err)
	}

	if rec.Token != raw {
		metrics.TokenValidationsTotal.WithLabelValues(string(kind), "invalid").Inc()
		return "", ErrInvalidToken
	}
	if rec.ExpiredAt(m.now()) {
		metrics.TokenValidationsTotal.WithLabelValues(string(kind), "expired").Inc()
		return "", ErrExpiredToken
	}

	metrics.TokenValidationsTotal.WithLabelValues(string(kind), "ok").Inc()
	return rec.UserID, nil
}

// Revoke удаляет обе записи пользователя. Единственный вызов — удаление аккаунта.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if err := m.repo.Delete(ctx, userID, KindAccess); err != nil {
		return fmt.Errorf("delete access token: %w", err)
	}
	if err := m.repo.Delete(ctx, userID, KindRefresh); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}
