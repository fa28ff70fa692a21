package token_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letthemcook/internal/token"
	"letthemcook/internal/token/repository"
)

// fakeClock — сдвигаемые часы для проверки истечения сроков без ожидания.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager() (*token.Manager, *fakeClock) {
	codec := token.NewCodec("test-secret", 24*time.Hour, 30*24*time.Hour)
	clock := newFakeClock()
	manager := token.NewManager(codec, repository.NewMemoryTokenRepository(), token.WithNow(clock.Now))
	return manager, clock
}

func TestIssuePairThenValidate(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	access, refresh, err := manager.IssuePair(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	userID, err := manager.Validate(ctx, access, token.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	userID, err = manager.Validate(ctx, refresh, token.KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidateRejectsKindConfusion(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	access, refresh, err := manager.IssuePair(ctx, "user-1")
	require.NoError(t, err)

	// refresh-строка не работает как access и наоборот
	_, err = manager.Validate(ctx, refresh, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = manager.Validate(ctx, access, token.KindRefresh)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestEnsureAccessIdempotentWhileLive(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	first, err := manager.EnsureAccess(ctx, "user-1")
	require.NoError(t, err)

	second, err := manager.EnsureAccess(ctx, "user-1")
	require.NoError(t, err)

	// живой токен не ротируется
	assert.Equal(t, first, second)
}

func TestIssuePairRotationInvalidatesOldString(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	oldAccess, oldRefresh, err := manager.IssuePair(ctx, "user-1")
	require.NoError(t, err)

	newAccess, newRefresh, err := manager.IssuePair(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, oldAccess, newAccess)
	assert.NotEqual(t, oldRefresh, newRefresh)

	// подпись старой строки всё ещё верна, но запись в сторе уже другая
	_, err = manager.Validate(ctx, oldAccess, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = manager.Validate(ctx, newAccess, token.KindAccess)
	assert.NoError(t, err)
}

func TestValidateExpiredThenRotate(t *testing.T) {
	manager, clock := newTestManager()
	ctx := context.Background()

	old, err := manager.EnsureAccess(ctx, "user-1")
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)

	_, err = manager.Validate(ctx, old, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrExpiredToken)

	fresh, err := manager.EnsureAccess(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, old, fresh)

	userID, err := manager.Validate(ctx, fresh, token.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	// после ротации старая строка перестаёт быть Expired и становится Invalid
	_, err = manager.Validate(ctx, old, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestValidateUnknownString(t *testing.T) {
	manager, _ := newTestManager()

	_, err := manager.Validate(context.Background(), "not-a-token", token.KindAccess)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

// Потерянное обновление: N конкурентных EnsureAccess без живой записи должны
// оставить в сторе ровно одну запись, и каждая возвращённая строка обязана
// проходить проверку после гонки.
func TestEnsureAccessConcurrent(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	const workers = 32

	results := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = manager.EnsureAccess(ctx, "user-1")
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.NotEmpty(t, results[i])

		userID, err := manager.Validate(ctx, results[i], token.KindAccess)
		require.NoError(t, err, "string returned to caller %d must stay verifiable", i)
		assert.Equal(t, "user-1", userID)
	}

	// все вызовы сошлись на одной и той же строке
	for i := 1; i < workers; i++ {
		assert.Equal(t, results[0], results[i])
	}
}

func TestRevokeDeletesBothKinds(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	access, refresh, err := manager.IssuePair(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(ctx, "user-1"))

	_, err = manager.Validate(ctx, access, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = manager.Validate(ctx, refresh, token.KindRefresh)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

// Полный сценарий: пара выпущена, access истёк, refresh ещё жив,
// перевыпуск даёт новую рабочую строку.
func TestAccessLifecycleEndToEnd(t *testing.T) {
	manager, clock := newTestManager()
	ctx := context.Background()

	a1, r1, err := manager.IssuePair(ctx, "u1")
	require.NoError(t, err)

	userID, err := manager.Validate(ctx, a1, token.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	clock.Advance(25 * time.Hour)

	_, err = manager.Validate(ctx, a1, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrExpiredToken)

	// refresh на 30 дней ещё живой
	userID, err = manager.Validate(ctx, r1, token.KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	a2, err := manager.EnsureAccess(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, a1, a2)

	userID, err = manager.Validate(ctx, a2, token.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

// failingRepo имитирует недоступность хранилища.
type failingRepo struct {
	err error
}

func (r *failingRepo) Find(ctx context.Context, userID string, kind token.Kind) (*token.Token, error) {
	return nil, r.err
}

func (r *failingRepo) Upsert(ctx context.Context, t *token.Token) error {
	return r.err
}

func (r *failingRepo) Acquire(ctx context.Context, candidate *token.Token, now time.Time) (*token.Token, error) {
	return nil, r.err
}

func (r *failingRepo) Delete(ctx context.Context, userID string, kind token.Kind) error {
	return r.err
}

func TestStorageFailureIsNotDowngraded(t *testing.T) {
	codec := token.NewCodec("test-secret", 24*time.Hour, 30*24*time.Hour)
	storageErr := errors.New("connection refused")
	manager := token.NewManager(codec, &failingRepo{err: storageErr})

	signed, _, err := codec.Issue("user-1", token.KindAccess, time.Now())
	require.NoError(t, err)

	_, err = manager.Validate(context.Background(), signed, token.KindAccess)
	require.Error(t, err)
	// инфраструктурная ошибка не должна маскироваться под проблему учётных данных
	assert.NotErrorIs(t, err, token.ErrInvalidToken)
	assert.NotErrorIs(t, err, token.ErrExpiredToken)
	assert.ErrorIs(t, err, storageErr)

	_, err = manager.EnsureAccess(context.Background(), "user-1")
	assert.ErrorIs(t, err, storageErr)

	_, _, err = manager.IssuePair(context.Background(), "user-1")
	assert.ErrorIs(t, err, storageErr)
}
