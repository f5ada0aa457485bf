package model

import "time"

// FollowStream is a private, named grouping of followed boards.
//
// Boards is only populated by endpoints that embed membership; the
// canonical way to read members is the stream boards listing.
type FollowStream struct {
	ID        string    `json:"stream_id"`
	Name      string    `json:"stream_name"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Boards    []Board   `json:"boards,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
