package handlers

// Request/response shapes of the REST binding. Responses echo both the
// resolved surrogate id and the human-readable natural keys.

type AddLocationRequest struct {
	LocationName string `json:"location_name" binding:"required"`
	Description  string `json:"description"`
}

type LocationResponse struct {
	LocationID   int64  `json:"location_id"`
	LocationName string `json:"location_name"`
	Description  string `json:"description"`
}

type AddPartRequest struct {
	PartNumber  string `json:"part_number" binding:"required"`
	Description string `json:"description"`
}

type PartResponse struct {
	PartID      int64  `json:"part_id"`
	PartNumber  string `json:"part_number"`
	Description string `json:"description"`
}

type AddBoxRequest struct {
	Code         string `json:"code" binding:"required"`
	LocationName string `json:"location_name" binding:"required"`
}

type BoxResponse struct {
	BoxID        int64  `json:"box_id"`
	Code         string `json:"code"`
	LocationName string `json:"location_name"`
}

type AddInventoryRequest struct {
	BoxCode      string `json:"box_code" binding:"required"`
	PartNumber   string `json:"part_number" binding:"required"`
	Description  string `json:"description"`
	LocationName string `json:"location_name" binding:"required"`
	Quantity     *int   `json:"quantity" binding:"required"`
}

type UpdateInventoryRequest struct {
	PartNumber  string `json:"part_number" binding:"required"`
	Description string `json:"description"`
	Quantity    *int   `json:"quantity" binding:"required"`
}

type InventoryResponse struct {
	InventoryID  int64  `json:"inventory_id"`
	BoxCode      string `json:"box_code"`
	PartNumber   string `json:"part_number"`
	Description  string `json:"description"`
	LocationName string `json:"location_name"`
	Quantity     int    `json:"quantity"`
}

// AddInventoryResponse tags which resolution branches created rows so
// callers can tell an idempotent re-add from a fresh insert.
type AddInventoryResponse struct {
	InventoryResponse
	Created    bool `json:"created"`
	BoxCreated bool `json:"box_created"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
