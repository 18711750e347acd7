package models

import "time"

// Relationship is a directed follow edge. The pair (FollowerID, FollowedID) is
// unique and the two ids never match; both are enforced by the database.
type Relationship struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follower_followed;check:chk_relationships_not_self,follower_id <> followed_id"`
	FollowedID uint      `json:"followed_id" gorm:"not null;index;uniqueIndex:idx_follower_followed"`
	CreatedAt  time.Time `json:"created_at"`

	Follower *User `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followed *User `json:"-" gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
}

// FollowCounts is the number of edges on each side of a user
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}
