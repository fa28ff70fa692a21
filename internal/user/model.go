package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID           string    `json:"id"`
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Name         string    `json:"name,omitempty"`
	Surname      string    `json:"surname,omitempty"`
	About        string    `json:"about,omitempty"`
	PasswordHash string    `json:"-"` // храним только хэш
	CreatedAt    time.Time `json:"created_at"`
}
