package model

import "time"

type User struct {
	ID        string    `json:"id"`
	AuthID    string    `json:"auth_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"` // admin / user
	CreatedAt time.Time `json:"created_at"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
