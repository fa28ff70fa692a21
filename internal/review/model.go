package review

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("review not found")

type Review struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	RecipeID  string    `json:"recipe_id"`
	Text      string    `json:"text,omitempty"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}
