package token

import "time"

// Kind — вид токена: access или refresh.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

func (k Kind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

// Token — серверная запись о выданном токене. На пару (UserID, Kind)
// хранится не больше одной живой записи: ротация перезаписывает строку.
type Token struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      Kind      `json:"kind"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Token) ExpiredAt(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
