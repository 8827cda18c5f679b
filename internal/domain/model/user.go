package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	Bio          string    `json:"bio"`
	Gender       string    `json:"gender"`
	Photos       []string  `json:"photos"`
	Interests    []string  `json:"interests"`
	IsPremium    bool      `json:"is_premium"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
