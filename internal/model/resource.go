package model

import "time"

// ResourceStatus is the lifecycle state of a listing.
type ResourceStatus string

const (
	ResourceAvailable ResourceStatus = "available"
	ResourceRequested ResourceStatus = "requested"
)

// OwnershipType says whether a listing is sold or lent for free.
type OwnershipType string

const (
	OwnershipSell  OwnershipType = "sell"
	OwnershipShare OwnershipType = "share"
)

// Valid reports whether t is a known ownership type.
func (t OwnershipType) Valid() bool { return t == OwnershipSell || t == OwnershipShare }

// Categories lists the listing categories offered by the marketplace.
var Categories = []string{"Books", "Electronics", "Notes", "Sports", "Other"}

// Resource is a listed item as stored in the `resources` table.
//
// Fields:
//  ID            – primary key identifier.
//  OwnerID       – user who listed the item.
//  Title         – short title.
//  Category      – one of Categories.
//  ItemCondition – free text such as "Good" or "Like New".
//  OwnershipType – sell or share.
//  Price         – asking price, always 0 for share listings.
//  Description   – optional long text.
//  Status        – available or requested.
//  CreatedAt     – creation timestamp.
type Resource struct {
	ID            uint64         `json:"id"`
	OwnerID       uint64         `json:"owner_id"`
	Title         string         `json:"title"`
	Category      string         `json:"category"`
	ItemCondition string         `json:"item_condition"`
	OwnershipType OwnershipType  `json:"ownership_type"`
	Price         float64        `json:"price"`
	Description   string         `json:"description"`
	Status        ResourceStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ResourceListing is a Resource joined with its owner's display name.
type ResourceListing struct {
	Resource
	OwnerName string `json:"owner_name"`
}

// ResourceFilter narrows resource listings.  An empty Category or the
// value "All" disables category filtering; Search matches title or
// description case-insensitively.
type ResourceFilter struct {
	Category      string
	Search        string
	AvailableOnly bool
	OwnerID       uint64
}
