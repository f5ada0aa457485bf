// Package model defines the data structures shared by the server, the API
// client and the CLI.
//
// JSON tags are the wire format of the REST API, so the client can decode
// server responses straight into these types.
package model

import "time"

// User is a registered account.
//
// Accounts are created either by username/password registration or by the
// first GitHub login. GitHubID is zero for password accounts and
// PasswordHash is empty for GitHub accounts.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	ProfileInfo  string    `json:"profile_info"`
	GitHubID     int64     `json:"github_id,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
