package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims — стандартные утверждения JWT плюс вид токена, чтобы refresh-строку
// нельзя было предъявить как access даже через чужой заголовок.
type Claims struct {
	jwt.RegisteredClaims
	Kind Kind `json:"kind"`
}

// Parsed — результат успешной проверки подписи.
type Parsed struct {
	UserID    string
	Kind      Kind
	ExpiresAt time.Time
}

// Codec подписывает и проверяет токены ключом сервера (HMAC-SHA512).
// Срок жизни из claims здесь только информационный: авторитетный срок
// хранится в записи стора и проверяется менеджером.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (c *Codec) Lifetime(kind Kind) time.Duration {
	if kind == KindRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue выпускает подписанную строку для userID. Момент "сейчас" передаётся
// снаружи, чтобы выпуск и запись в стор считали срок от одного и того же времени.
func (c *Codec) Issue(userID string, kind Kind, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(c.Lifetime(kind))

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Kind: kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Parse проверяет подпись и структуру без обращения к стору. Просроченность
// здесь не проверяется: jwt.WithoutClaimsValidation, иначе менеджер не смог бы
// отличить Expired от Invalid.
func (c *Codec) Parse(raw string) (*Parsed, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return c.secret, nil
		},
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if !claims.Kind.Valid() || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	return &Parsed{
		UserID:    claims.Subject,
		Kind:      claims.Kind,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
