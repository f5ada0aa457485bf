package model

import "time"

// Board is a named collection of pins owned by one user.
//
// FollowerCount is never stored; repositories compute it as the number of
// distinct users owning at least one follow-stream that contains the board.
type Board struct {
	ID                  string    `json:"board_id"`
	Name                string    `json:"board_name"`
	Descriptor          string    `json:"descriptor"`
	OwnerID             string    `json:"owner_id"`
	AllowFriendsComment bool      `json:"allow_friends_comment"`
	FollowerCount       int       `json:"follower_count"`
	CreatedAt           time.Time `json:"created_at"`
}

// FollowStatus is the caller-relative follow projection of a board.
type FollowStatus struct {
	BoardID       string `json:"board_id"`
	Following     bool   `json:"following"`
	FollowerCount int    `json:"follower_count"`
}
