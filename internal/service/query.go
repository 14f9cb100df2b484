package service

import (
	"context"
	"strconv"

	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/models"
	"github.com/garrido-mendoza/PartsRepositoryAPI/pkg/errors"
)

// The query façade: read-only lookups by surrogate id, natural key and
// relationship. Rows are echoed back with their human-readable natural
// keys resolved. List operations return empty slices, never errors,
// when nothing matches.

// BoxDetail is a box with its location name resolved
type BoxDetail struct {
	Box          models.Box
	LocationName string
}

// ItemDetail is an inventory item with its box code and location name resolved
type ItemDetail struct {
	Item         models.InventoryItem
	BoxCode      string
	LocationName string
}

func (s *Service) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	loc, err := s.repo.FindLocationByID(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("get location", err)
	}
	if loc == nil {
		return nil, errors.NewLocationNotFound(strconv.FormatInt(id, 10))
	}
	return loc, nil
}

func (s *Service) GetLocationByName(ctx context.Context, name string) (*models.Location, error) {
	loc, err := s.repo.FindLocationByName(ctx, name)
	if err != nil {
		return nil, errors.NewDatabaseError("get location", err)
	}
	if loc == nil {
		return nil, errors.NewLocationNotFound(name)
	}
	return loc, nil
}

func (s *Service) ListLocations(ctx context.Context) ([]models.Location, error) {
	locations, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list locations", err)
	}
	return locations, nil
}

func (s *Service) GetPart(ctx context.Context, id int64) (*models.Part, error) {
	part, err := s.repo.FindPartByID(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("get part", err)
	}
	if part == nil {
		return nil, errors.NewPartNotFound(strconv.FormatInt(id, 10))
	}
	return part, nil
}

func (s *Service) GetPartByNumber(ctx context.Context, partNumber string) (*models.Part, error) {
	part, err := s.repo.FindPartByNumber(ctx, partNumber)
	if err != nil {
		return nil, errors.NewDatabaseError("get part", err)
	}
	if part == nil {
		return nil, errors.NewPartNotFound(partNumber)
	}
	return part, nil
}

func (s *Service) ListParts(ctx context.Context) ([]models.Part, error) {
	parts, err := s.repo.ListParts(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list parts", err)
	}
	return parts, nil
}

func (s *Service) GetBox(ctx context.Context, id int64) (*BoxDetail, error) {
	box, err := s.repo.FindBoxByID(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("get box", err)
	}
	if box == nil {
		return nil, errors.NewBoxNotFound(strconv.FormatInt(id, 10))
	}
	return s.boxDetail(ctx, box)
}

func (s *Service) GetBoxByCode(ctx context.Context, code string) (*BoxDetail, error) {
	box, err := s.repo.FindBoxByCode(ctx, code)
	if err != nil {
		return nil, errors.NewDatabaseError("get box", err)
	}
	if box == nil {
		return nil, errors.NewBoxNotFound(code)
	}
	return s.boxDetail(ctx, box)
}

func (s *Service) ListBoxes(ctx context.Context) ([]BoxDetail, error) {
	boxes, err := s.repo.ListBoxes(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list boxes", err)
	}

	names := make(map[int64]string)
	details := make([]BoxDetail, 0, len(boxes))
	for _, box := range boxes {
		name, ok := names[box.LocationID]
		if !ok {
			loc, err := s.repo.FindLocationByID(ctx, box.LocationID)
			if err != nil {
				return nil, errors.NewDatabaseError("list boxes", err)
			}
			if loc != nil {
				name = loc.Name
			}
			names[box.LocationID] = name
		}
		details = append(details, BoxDetail{Box: box, LocationName: name})
	}
	return details, nil
}

func (s *Service) boxDetail(ctx context.Context, box *models.Box) (*BoxDetail, error) {
	loc, err := s.repo.FindLocationByID(ctx, box.LocationID)
	if err != nil {
		return nil, errors.NewDatabaseError("get box", err)
	}
	detail := &BoxDetail{Box: *box}
	if loc != nil {
		detail.LocationName = loc.Name
	}
	return detail, nil
}

func (s *Service) GetInventoryItem(ctx context.Context, id int64) (*ItemDetail, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("get inventory item", err)
	}
	if item == nil {
		return nil, errors.NewItemNotFound(strconv.FormatInt(id, 10))
	}

	details, err := s.itemDetails(ctx, []models.InventoryItem{*item})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListItemsForBox returns every item inside the box with the given
// code. The box itself must exist.
func (s *Service) ListItemsForBox(ctx context.Context, code string) ([]ItemDetail, error) {
	box, err := s.repo.FindBoxByCode(ctx, code)
	if err != nil {
		return nil, errors.NewDatabaseError("list items for box", err)
	}
	if box == nil {
		return nil, errors.NewBoxNotFound(code)
	}

	items, err := s.repo.ListItemsByBox(ctx, box.ID)
	if err != nil {
		return nil, errors.NewDatabaseError("list items for box", err)
	}
	return s.itemDetails(ctx, items)
}

// SearchItemsByPart returns every item holding the given part number,
// across all boxes. No match is an empty result, not an error.
func (s *Service) SearchItemsByPart(ctx context.Context, partNumber string) ([]ItemDetail, error) {
	items, err := s.repo.ListItemsByPartNumber(ctx, partNumber)
	if err != nil {
		return nil, errors.NewDatabaseError("search items by part", err)
	}
	return s.itemDetails(ctx, items)
}

func (s *Service) itemDetails(ctx context.Context, items []models.InventoryItem) ([]ItemDetail, error) {
	boxes := make(map[int64]*BoxDetail)
	details := make([]ItemDetail, 0, len(items))
	for _, item := range items {
		bd, ok := boxes[item.BoxID]
		if !ok {
			box, err := s.repo.FindBoxByID(ctx, item.BoxID)
			if err != nil {
				return nil, errors.NewDatabaseError("resolve item box", err)
			}
			if box != nil {
				bd, err = s.boxDetail(ctx, box)
				if err != nil {
					return nil, err
				}
			}
			boxes[item.BoxID] = bd
		}

		detail := ItemDetail{Item: item}
		if bd != nil {
			detail.BoxCode = bd.Box.Code
			detail.LocationName = bd.LocationName
		}
		details = append(details, detail)
	}
	return details, nil
}
