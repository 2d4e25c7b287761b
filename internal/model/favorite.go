package model

import "time"

// Favorite is a user's saved-for-later marker on a resource.  The pair
// (UserID, ResourceID) is unique.
type Favorite struct {
	UserID     uint64    `json:"user_id"`
	ResourceID uint64    `json:"resource_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// FavoriteListing is a favorite joined with the listing it points at.
type FavoriteListing struct {
	FavoritedAt time.Time       `json:"favorited_at"`
	Listing     ResourceListing `json:"listing"`
}
