package recipe

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("recipe not found")

type Recipe struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CookingTime int64     `json:"cooking_time,omitempty"` // минуты
	Likes       int       `json:"likes"`
	Views       int       `json:"views"`
	PublishedAt time.Time `json:"published_at"`
}
