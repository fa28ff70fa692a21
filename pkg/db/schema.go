package db

import (
	"database/sql"
	"fmt"
)

// Схема создаётся при старте, как в akinalpfdn-подобных сервисах без внешних миграций.
// UNIQUE (user_id, kind) — инвариант "одна живая запись на пользователя и вид токена".
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         VARCHAR(36) PRIMARY KEY,
	login      VARCHAR(255) NOT NULL UNIQUE,
	email      VARCHAR(255) NOT NULL UNIQUE,
	phone      VARCHAR(255),
	name       VARCHAR(255),
	surname    VARCHAR(255),
	about      TEXT,
	password   VARCHAR(255) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS tokens (
	id         BIGSERIAL PRIMARY KEY,
	user_id    VARCHAR(36) NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	kind       VARCHAR(16) NOT NULL,
	token      TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, kind)
);

CREATE TABLE IF NOT EXISTS recipes (
	id           VARCHAR(36) PRIMARY KEY,
	owner_id     VARCHAR(36) NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	name         VARCHAR(255) NOT NULL,
	description  TEXT,
	cooking_time BIGINT,
	likes        INTEGER NOT NULL DEFAULT 0,
	views        INTEGER NOT NULL DEFAULT 0,
	published_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS reviews (
	id         VARCHAR(36) PRIMARY KEY,
	author_id  VARCHAR(36) NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	recipe_id  VARCHAR(36) NOT NULL REFERENCES recipes (id) ON DELETE CASCADE,
	text       TEXT,
	likes      INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
