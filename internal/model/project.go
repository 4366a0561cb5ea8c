package model

import "time"

type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ClientName string `json:"client_name,omitempty"`
	// ClientToken is a capability secret: anyone holding the matching
	// (client_name, client_token) pair gets read-only access to the
	// project's public tasks.
	ClientToken string    `json:"client_token"`
	CreatedAt   time.Time `json:"created_at"`
}
