package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/events"
	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/models"
	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/repository"
	"github.com/garrido-mendoza/PartsRepositoryAPI/pkg/errors"

	"go.uber.org/zap"
)

// Service is the resolution engine: it turns natural-key requests into
// stored rows, lazily creating what policy allows, and enforces the
// lifecycle rules between entities. All methods are synchronous; the
// store serializes conflicting writes.
type Service struct {
	repo     repository.Repository
	eventBus events.EventPublisher
	logger   *zap.Logger
}

// New creates a Service. A nil publisher falls back to the in-memory one.
func New(repo repository.Repository, eventBus events.EventPublisher, logger *zap.Logger) *Service {
	if eventBus == nil {
		eventBus = events.NewEventPublisher(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// BoxResolution reports how a box code was resolved. Created
// distinguishes a fresh row from an idempotent re-add.
type BoxResolution struct {
	Box      *models.Box
	Location *models.Location
	Created  bool
}

// ItemResolution is the outcome of an inventory add. BoxCreated is set
// when the box was created implicitly as a side effect of the add.
type ItemResolution struct {
	Item        *models.InventoryItem
	Box         *models.Box
	Location    *models.Location
	ItemCreated bool
	BoxCreated  bool
}

// AddInventoryInput is the natural-key request shape for AddInventory
type AddInventoryInput struct {
	BoxCode      string
	PartNumber   string
	Description  string
	LocationName string
	Quantity     int
}

// ---- Locations ----

// AddLocation registers a location, idempotent on name: a repeat add
// returns the existing row untouched.
func (s *Service) AddLocation(ctx context.Context, name, description string) (*models.Location, bool, error) {
	if err := requireField(name, "location_name"); err != nil {
		return nil, false, err
	}

	loc, created, err := s.repo.InsertLocation(ctx, name, description)
	if err != nil {
		return nil, false, errors.NewDatabaseError("add location", err)
	}

	if created {
		s.publish(ctx, events.LocationCreatedEvent{
			LocationID:  loc.ID,
			Name:        loc.Name,
			Description: loc.Description,
			OccurredAt:  loc.CreatedAt,
		})
		s.logger.Info("Location created", zap.Int64("location_id", loc.ID), zap.String("name", loc.Name))
	}
	return loc, created, nil
}

// DeleteLocation removes a location. Deletion is blocked while boxes
// still reference it.
func (s *Service) DeleteLocation(ctx context.Context, id int64) error {
	loc, err := s.repo.FindLocationByID(ctx, id)
	if err != nil {
		return errors.NewDatabaseError("delete location", err)
	}
	if loc == nil {
		return errors.NewLocationNotFound(strconv.FormatInt(id, 10))
	}

	if _, err := s.repo.DeleteLocation(ctx, id); err != nil {
		return translateDeleteError(err, "delete location",
			"location still has boxes", fmt.Sprintf("Location: %s", loc.Name))
	}

	s.publish(ctx, events.LocationDeletedEvent{
		LocationID: loc.ID,
		Name:       loc.Name,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// ---- Parts ----

// AddPart registers a catalog part, idempotent on part number.
func (s *Service) AddPart(ctx context.Context, partNumber, description string) (*models.Part, bool, error) {
	if err := requireField(partNumber, "part_number"); err != nil {
		return nil, false, err
	}

	part, created, err := s.repo.InsertPart(ctx, partNumber, description)
	if err != nil {
		return nil, false, errors.NewDatabaseError("add part", err)
	}

	if created {
		s.publish(ctx, events.PartCreatedEvent{
			PartID:      part.ID,
			PartNumber:  part.PartNumber,
			Description: part.Description,
			OccurredAt:  part.CreatedAt,
		})
		s.logger.Info("Part created", zap.Int64("part_id", part.ID), zap.String("part_number", part.PartNumber))
	}
	return part, created, nil
}

// DeletePart removes a part. Deletion is blocked while inventory items
// still reference it.
func (s *Service) DeletePart(ctx context.Context, id int64) error {
	part, err := s.repo.FindPartByID(ctx, id)
	if err != nil {
		return errors.NewDatabaseError("delete part", err)
	}
	if part == nil {
		return errors.NewPartNotFound(strconv.FormatInt(id, 10))
	}

	if _, err := s.repo.DeletePart(ctx, id); err != nil {
		return translateDeleteError(err, "delete part",
			"part is still referenced by inventory", fmt.Sprintf("Part: %s", part.PartNumber))
	}

	s.publish(ctx, events.PartDeletedEvent{
		PartID:     part.ID,
		PartNumber: part.PartNumber,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// ---- Boxes ----

// AddBox resolves a box code under a named location, creating the box
// when absent. Locations are never created from this path: an unknown
// location name fails NotFound. A code already bound to a different
// location is a conflict, not a second box.
func (s *Service) AddBox(ctx context.Context, code, locationName string) (*BoxResolution, error) {
	if err := requireField(code, "code"); err != nil {
		return nil, err
	}
	if err := requireField(locationName, "location_name"); err != nil {
		return nil, err
	}

	loc, err := s.repo.FindLocationByName(ctx, locationName)
	if err != nil {
		return nil, errors.NewDatabaseError("add box", err)
	}
	if loc == nil {
		return nil, errors.NewLocationNotFound(locationName)
	}

	return s.resolveBox(ctx, code, loc, false)
}

// resolveBox is the shared find-or-create step for AddBox and
// AddInventory. The insert is race-safe: the UNIQUE code constraint
// means at most one creator wins and everyone else resolves to the
// winner's row.
func (s *Service) resolveBox(ctx context.Context, code string, loc *models.Location, implicit bool) (*BoxResolution, error) {
	box, created, err := s.repo.InsertBox(ctx, code, loc.ID)
	if err != nil {
		return nil, errors.NewDatabaseError("resolve box", err)
	}
	if !created && box.LocationID != loc.ID {
		return nil, errors.NewConflict("box code is already in use at another location",
			fmt.Sprintf("Box: %s", code))
	}

	if created {
		s.publish(ctx, events.BoxCreatedEvent{
			BoxID:        box.ID,
			Code:         box.Code,
			LocationName: loc.Name,
			Implicit:     implicit,
			OccurredAt:   box.CreatedAt,
		})
		s.logger.Info("Box created",
			zap.Int64("box_id", box.ID),
			zap.String("code", box.Code),
			zap.String("location", loc.Name),
			zap.Bool("implicit", implicit),
		)
	}

	return &BoxResolution{Box: box, Location: loc, Created: created}, nil
}

// DeleteBox removes a box and, atomically with it, every inventory
// item inside it.
func (s *Service) DeleteBox(ctx context.Context, id int64) error {
	box, err := s.repo.FindBoxByID(ctx, id)
	if err != nil {
		return errors.NewDatabaseError("delete box", err)
	}
	if box == nil {
		return errors.NewBoxNotFound(strconv.FormatInt(id, 10))
	}

	items, err := s.repo.ListItemsByBox(ctx, box.ID)
	if err != nil {
		return errors.NewDatabaseError("delete box", err)
	}

	if _, err := s.repo.DeleteBox(ctx, id); err != nil {
		return errors.NewDatabaseError("delete box", err)
	}

	s.publish(ctx, events.BoxDeletedEvent{
		BoxID:        box.ID,
		Code:         box.Code,
		ItemsDeleted: len(items),
		OccurredAt:   time.Now().UTC(),
	})
	s.logger.Info("Box deleted",
		zap.Int64("box_id", box.ID),
		zap.String("code", box.Code),
		zap.Int("items_deleted", len(items)),
	)
	return nil
}

// ---- Inventory ----

// AddInventory resolves every referenced entity and records a quantity
// of a part inside a box. Resolution order is deliberate: part and
// location are resolved before any write, so a failed reference leaves
// nothing behind, not even the implicitly created box. The add is
// idempotent on (box, part): when an item already exists it is
// returned verbatim and the supplied quantity and description are
// discarded.
func (s *Service) AddInventory(ctx context.Context, in AddInventoryInput) (*ItemResolution, error) {
	if err := requireField(in.BoxCode, "box_code"); err != nil {
		return nil, err
	}
	if err := requireField(in.PartNumber, "part_number"); err != nil {
		return nil, err
	}
	if err := requireField(in.LocationName, "location_name"); err != nil {
		return nil, err
	}
	if err := requireQuantity(in.Quantity); err != nil {
		return nil, err
	}

	// Resolve all references before the first write.
	part, err := s.repo.FindPartByNumber(ctx, in.PartNumber)
	if err != nil {
		return nil, errors.NewDatabaseError("add inventory", err)
	}
	if part == nil {
		return nil, errors.NewPartNotFound(in.PartNumber)
	}

	loc, err := s.repo.FindLocationByName(ctx, in.LocationName)
	if err != nil {
		return nil, errors.NewDatabaseError("add inventory", err)
	}
	if loc == nil {
		return nil, errors.NewLocationNotFound(in.LocationName)
	}

	boxRes, err := s.resolveBox(ctx, in.BoxCode, loc, true)
	if err != nil {
		return nil, err
	}

	item, created, err := s.repo.InsertInventoryItem(ctx, &models.InventoryItem{
		BoxID:       boxRes.Box.ID,
		PartID:      part.ID,
		PartNumber:  part.PartNumber,
		Description: in.Description,
		Quantity:    in.Quantity,
	})
	if err != nil {
		return nil, errors.NewDatabaseError("add inventory", err)
	}

	if created {
		s.publish(ctx, events.InventoryItemCreatedEvent{
			ItemID:     item.ID,
			BoxCode:    boxRes.Box.Code,
			PartNumber: item.PartNumber,
			Quantity:   item.Quantity,
			OccurredAt: item.UpdatedAt,
		})
		s.logger.Info("Inventory item created",
			zap.Int64("item_id", item.ID),
			zap.String("box_code", boxRes.Box.Code),
			zap.String("part_number", item.PartNumber),
			zap.Int("quantity", item.Quantity),
		)
	}

	return &ItemResolution{
		Item:        item,
		Box:         boxRes.Box,
		Location:    loc,
		ItemCreated: created,
		BoxCreated:  boxRes.Created,
	}, nil
}

// UpdateInventory replaces an item's part reference, description and
// quantity. The new part number must resolve to a registered part so
// the part relationship stays valid.
func (s *Service) UpdateInventory(ctx context.Context, id int64, partNumber, description string, quantity int) (*models.InventoryItem, error) {
	if err := requireField(partNumber, "part_number"); err != nil {
		return nil, err
	}
	if err := requireQuantity(quantity); err != nil {
		return nil, err
	}

	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("update inventory", err)
	}
	if item == nil {
		return nil, errors.NewItemNotFound(strconv.FormatInt(id, 10))
	}

	part, err := s.repo.FindPartByNumber(ctx, partNumber)
	if err != nil {
		return nil, errors.NewDatabaseError("update inventory", err)
	}
	if part == nil {
		return nil, errors.NewPartNotFound(partNumber)
	}

	item.PartID = part.ID
	item.PartNumber = part.PartNumber
	item.Description = description
	item.Quantity = quantity

	ok, err := s.repo.UpdateInventoryItem(ctx, item)
	if err != nil {
		return nil, errors.NewDatabaseError("update inventory", err)
	}
	if !ok {
		return nil, errors.NewItemNotFound(strconv.FormatInt(id, 10))
	}

	s.publish(ctx, events.InventoryItemUpdatedEvent{
		ItemID:     item.ID,
		PartNumber: item.PartNumber,
		Quantity:   item.Quantity,
		OccurredAt: item.UpdatedAt,
	})
	return item, nil
}

// DeleteInventory removes a single inventory item
func (s *Service) DeleteInventory(ctx context.Context, id int64) error {
	deleted, err := s.repo.DeleteInventoryItem(ctx, id)
	if err != nil {
		return errors.NewDatabaseError("delete inventory", err)
	}
	if !deleted {
		return errors.NewItemNotFound(strconv.FormatInt(id, 10))
	}

	s.publish(ctx, events.InventoryItemDeletedEvent{
		ItemID:     id,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// publish sends a change event. Publish failures are logged and do not
// fail the operation: the store is the source of truth.
func (s *Service) publish(ctx context.Context, event interface{}) {
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", zap.Error(err))
	}
}
