package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthUser is the public projection of a User, safe to return to clients.
type AuthUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}
