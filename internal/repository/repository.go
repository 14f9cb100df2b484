package repository

import (
	"context"

	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/models"
)

// Repository is pure persistence for the four entity tables. Find
// methods return (nil, nil) when no row matches; deciding whether that
// is an error belongs to the caller. Errors are store-level faults
// only (connectivity, constraint violations).
type Repository interface {
	// Locations
	InsertLocation(ctx context.Context, name, description string) (*models.Location, bool, error)
	FindLocationByID(ctx context.Context, id int64) (*models.Location, error)
	FindLocationByName(ctx context.Context, name string) (*models.Location, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
	DeleteLocation(ctx context.Context, id int64) (bool, error)

	// Parts
	InsertPart(ctx context.Context, partNumber, description string) (*models.Part, bool, error)
	FindPartByID(ctx context.Context, id int64) (*models.Part, error)
	FindPartByNumber(ctx context.Context, partNumber string) (*models.Part, error)
	ListParts(ctx context.Context) ([]models.Part, error)
	DeletePart(ctx context.Context, id int64) (bool, error)

	// Boxes
	InsertBox(ctx context.Context, code string, locationID int64) (*models.Box, bool, error)
	FindBoxByID(ctx context.Context, id int64) (*models.Box, error)
	FindBoxByCode(ctx context.Context, code string) (*models.Box, error)
	ListBoxes(ctx context.Context) ([]models.Box, error)
	DeleteBox(ctx context.Context, id int64) (bool, error)

	// Inventory items
	InsertInventoryItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, bool, error)
	FindItemByID(ctx context.Context, id int64) (*models.InventoryItem, error)
	FindItemByBoxAndPart(ctx context.Context, boxID, partID int64) (*models.InventoryItem, error)
	ListItemsByBox(ctx context.Context, boxID int64) ([]models.InventoryItem, error)
	ListItemsByPartNumber(ctx context.Context, partNumber string) ([]models.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, item *models.InventoryItem) (bool, error)
	DeleteInventoryItem(ctx context.Context, id int64) (bool, error)

	Close() error
}
