package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPatch carries the fields a partial update may change; nil means keep.
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}
