package models

import "time"

// Location is a physical area that holds boxes. Its name is the
// natural key: unique, matched case-sensitively.
type Location struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// Box is a container placed at exactly one location. The code is
// globally unique.
type Box struct {
	ID         int64
	Code       string
	LocationID int64
	CreatedAt  time.Time
}

// Part is a catalog entry identified by its part number.
type Part struct {
	ID          int64
	PartNumber  string
	Description string
	CreatedAt   time.Time
}

// InventoryItem records the quantity of a part inside a box. PartID is
// the relationship's source of truth; PartNumber is a cached display
// projection taken at write time. At most one item exists per
// (box, part) pair.
type InventoryItem struct {
	ID          int64
	BoxID       int64
	PartID      int64
	PartNumber  string
	Description string
	Quantity    int
	UpdatedAt   time.Time
}
