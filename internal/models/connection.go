package models

import "time"

// Credentials is the validated Atlassian connection used to build API clients
type Credentials struct {
	BaseURL  string `validate:"required,url"`
	Username string `validate:"required_if=AuthType basic"`
	APIToken string `validate:"required"`
	JiraURL  string `validate:"omitempty,url"`
	AuthType string `validate:"oneof=basic bearer"`
}

// Connection is a named key/value credential set persisted in the connection store
type Connection struct {
	Name      string            `json:"name"`
	Values    map[string]string `json:"values"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
