package repository

import (
	"context"
	"sync"
	"time"

	"letthemcook/internal/token"
)

type memoryKey struct {
	userID string
	kind   token.Kind
}

// MemoryTokenRepository — то же хранилище на карте под мьютексом:
// для тестов и локального запуска без Postgres.
type MemoryTokenRepository struct {
	mu     sync.Mutex
	tokens map[memoryKey]token.Token
	nextID int64
}

func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{
		tokens: make(map[memoryKey]token.Token),
	}
}

func (r *MemoryTokenRepository) Find(ctx context.Context, userID string, kind token.Kind) (*token.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[memoryKey{userID, kind}]
	if !ok {
		return nil, token.ErrNotFound
	}

	copied := t
	return &copied, nil
}

func (r *MemoryTokenRepository) Upsert(ctx context.Context, t *token.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store(t)
	return nil
}

func (r *MemoryTokenRepository) Acquire(ctx context.Context, candidate *token.Token, now time.Time) (*token.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tokens[memoryKey{candidate.UserID, candidate.Kind}]
	if ok && existing.ExpiresAt.After(now) {
		copied := existing
		return &copied, nil
	}

	r.store(candidate)
	copied := *candidate
	return &copied, nil
}

func (r *MemoryTokenRepository) Delete(ctx context.Context, userID string, kind token.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, memoryKey{userID, kind})
	return nil
}

// store вызывается только под мьютексом.
func (r *MemoryTokenRepository) store(t *token.Token) {
	key := memoryKey{t.UserID, t.Kind}

	if existing, ok := r.tokens[key]; ok {
		t.ID = existing.ID
		t.CreatedAt = existing.CreatedAt
	} else {
		r.nextID++
		t.ID = r.nextID
		t.CreatedAt = time.Now()
	}

	r.tokens[key] = *t
}
