package service

import (
	"context"
	"testing"
	"time"

	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/events"
	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/models"
	"github.com/garrido-mendoza/PartsRepositoryAPI/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of repository.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) InsertLocation(ctx context.Context, name, description string) (*models.Location, bool, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Location), args.Bool(1), args.Error(2)
}

func (m *MockRepository) FindLocationByID(ctx context.Context, id int64) (*models.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockRepository) FindLocationByName(ctx context.Context, name string) (*models.Location, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockRepository) ListLocations(ctx context.Context) ([]models.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockRepository) DeleteLocation(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) InsertPart(ctx context.Context, partNumber, description string) (*models.Part, bool, error) {
	args := m.Called(ctx, partNumber, description)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Part), args.Bool(1), args.Error(2)
}

func (m *MockRepository) FindPartByID(ctx context.Context, id int64) (*models.Part, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Part), args.Error(1)
}

func (m *MockRepository) FindPartByNumber(ctx context.Context, partNumber string) (*models.Part, error) {
	args := m.Called(ctx, partNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Part), args.Error(1)
}

func (m *MockRepository) ListParts(ctx context.Context) ([]models.Part, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Part), args.Error(1)
}

func (m *MockRepository) DeletePart(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) InsertBox(ctx context.Context, code string, locationID int64) (*models.Box, bool, error) {
	args := m.Called(ctx, code, locationID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Box), args.Bool(1), args.Error(2)
}

func (m *MockRepository) FindBoxByID(ctx context.Context, id int64) (*models.Box, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Box), args.Error(1)
}

func (m *MockRepository) FindBoxByCode(ctx context.Context, code string) (*models.Box, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Box), args.Error(1)
}

func (m *MockRepository) ListBoxes(ctx context.Context) ([]models.Box, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Box), args.Error(1)
}

func (m *MockRepository) DeleteBox(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) InsertInventoryItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, bool, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.InventoryItem), args.Bool(1), args.Error(2)
}

func (m *MockRepository) FindItemByID(ctx context.Context, id int64) (*models.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockRepository) FindItemByBoxAndPart(ctx context.Context, boxID, partID int64) (*models.InventoryItem, error) {
	args := m.Called(ctx, boxID, partID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockRepository) ListItemsByBox(ctx context.Context, boxID int64) ([]models.InventoryItem, error) {
	args := m.Called(ctx, boxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InventoryItem), args.Error(1)
}

func (m *MockRepository) ListItemsByPartNumber(ctx context.Context, partNumber string) ([]models.InventoryItem, error) {
	args := m.Called(ctx, partNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InventoryItem), args.Error(1)
}

func (m *MockRepository) UpdateInventoryItem(ctx context.Context, item *models.InventoryItem) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) DeleteInventoryItem(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestService(repo *MockRepository) (*Service, *events.InMemoryEventPublisher) {
	bus := events.NewEventPublisher(nil)
	return New(repo, bus, nil), bus
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok, "expected StandardError, got %T", err)
	assert.Equal(t, code, stdErr.Code)
}

func TestAddLocation_CreatesAndPublishes(t *testing.T) {
	repo := new(MockRepository)
	svc, bus := newTestService(repo)

	loc := &models.Location{ID: 1, Name: "A1", Description: "Shelf", CreatedAt: time.Now()}
	repo.On("InsertLocation", mock.Anything, "A1", "Shelf").Return(loc, true, nil)

	got, created, err := svc.AddLocation(context.Background(), "A1", "Shelf")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), got.ID)
	assert.Len(t, bus.Events(), 1)
	repo.AssertExpectations(t)
}

func TestAddLocation_IdempotentReturnsExisting(t *testing.T) {
	repo := new(MockRepository)
	svc, bus := newTestService(repo)

	existing := &models.Location{ID: 7, Name: "A1", Description: "Shelf"}
	repo.On("InsertLocation", mock.Anything, "A1", "other desc").Return(existing, false, nil)

	got, created, err := svc.AddLocation(context.Background(), "A1", "other desc")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Shelf", got.Description)
	assert.Empty(t, bus.Events(), "no event for an idempotent re-add")
}

func TestAddLocation_EmptyNameRejected(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	_, _, err := svc.AddLocation(context.Background(), "  ", "desc")
	assertCode(t, err, "ValidationError")
	repo.AssertNotCalled(t, "InsertLocation", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddBox_LocationNotFound(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("FindLocationByName", mock.Anything, "nowhere").Return(nil, nil)

	_, err := svc.AddBox(context.Background(), "B1", "nowhere")
	assertCode(t, err, "LocationNotFound")
	repo.AssertNotCalled(t, "InsertBox", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddBox_CreatesUnderLocation(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	loc := &models.Location{ID: 3, Name: "A1"}
	box := &models.Box{ID: 9, Code: "B1", LocationID: 3}
	repo.On("FindLocationByName", mock.Anything, "A1").Return(loc, nil)
	repo.On("InsertBox", mock.Anything, "B1", int64(3)).Return(box, true, nil)

	res, err := svc.AddBox(context.Background(), "B1", "A1")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, int64(9), res.Box.ID)
	assert.Equal(t, "A1", res.Location.Name)
}

func TestAddBox_IdempotentOnCode(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	loc := &models.Location{ID: 3, Name: "A1"}
	existing := &models.Box{ID: 9, Code: "B1", LocationID: 3}
	repo.On("FindLocationByName", mock.Anything, "A1").Return(loc, nil)
	repo.On("InsertBox", mock.Anything, "B1", int64(3)).Return(existing, false, nil)

	res, err := svc.AddBox(context.Background(), "B1", "A1")
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, int64(9), res.Box.ID)
}

func TestAddBox_CodeBoundToAnotherLocation(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	loc := &models.Location{ID: 3, Name: "A1"}
	elsewhere := &models.Box{ID: 9, Code: "B1", LocationID: 4}
	repo.On("FindLocationByName", mock.Anything, "A1").Return(loc, nil)
	repo.On("InsertBox", mock.Anything, "B1", int64(3)).Return(elsewhere, false, nil)

	_, err := svc.AddBox(context.Background(), "B1", "A1")
	assertCode(t, err, "Conflict")
}

func TestAddInventory_PartNotFound_NoWrites(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("FindPartByNumber", mock.Anything, "P404").Return(nil, nil)

	_, err := svc.AddInventory(context.Background(), AddInventoryInput{
		BoxCode: "B1", PartNumber: "P404", LocationName: "A1", Quantity: 5,
	})
	assertCode(t, err, "PartNotFound")
	// A failed part resolution must not leave a box behind.
	repo.AssertNotCalled(t, "InsertBox", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "InsertInventoryItem", mock.Anything, mock.Anything)
}

func TestAddInventory_LocationNotFound_NoWrites(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	part := &models.Part{ID: 2, PartNumber: "P1"}
	repo.On("FindPartByNumber", mock.Anything, "P1").Return(part, nil)
	repo.On("FindLocationByName", mock.Anything, "nowhere").Return(nil, nil)

	_, err := svc.AddInventory(context.Background(), AddInventoryInput{
		BoxCode: "B1", PartNumber: "P1", LocationName: "nowhere", Quantity: 5,
	})
	assertCode(t, err, "LocationNotFound")
	repo.AssertNotCalled(t, "InsertBox", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddInventory_CreatesBoxImplicitly(t *testing.T) {
	repo := new(MockRepository)
	svc, bus := newTestService(repo)

	part := &models.Part{ID: 2, PartNumber: "P1"}
	loc := &models.Location{ID: 3, Name: "A1"}
	box := &models.Box{ID: 9, Code: "B1", LocationID: 3}
	item := &models.InventoryItem{ID: 11, BoxID: 9, PartID: 2, PartNumber: "P1", Description: "Widget", Quantity: 5}

	repo.On("FindPartByNumber", mock.Anything, "P1").Return(part, nil)
	repo.On("FindLocationByName", mock.Anything, "A1").Return(loc, nil)
	repo.On("InsertBox", mock.Anything, "B1", int64(3)).Return(box, true, nil)
	repo.On("InsertInventoryItem", mock.Anything, mock.MatchedBy(func(it *models.InventoryItem) bool {
		return it.BoxID == 9 && it.PartID == 2 && it.Quantity == 5
	})).Return(item, true, nil)

	res, err := svc.AddInventory(context.Background(), AddInventoryInput{
		BoxCode: "B1", PartNumber: "P1", Description: "Widget", LocationName: "A1", Quantity: 5,
	})
	require.NoError(t, err)
	assert.True(t, res.ItemCreated)
	assert.True(t, res.BoxCreated)
	assert.Equal(t, int64(11), res.Item.ID)
	assert.Equal(t, 5, res.Item.Quantity)
	assert.Len(t, bus.Events(), 2, "box created + item created")
}

func TestAddInventory_IdempotentReturnsExistingVerbatim(t *testing.T) {
	repo := new(MockRepository)
	svc, bus := newTestService(repo)

	part := &models.Part{ID: 2, PartNumber: "P1"}
	loc := &models.Location{ID: 3, Name: "A1"}
	box := &models.Box{ID: 9, Code: "B1", LocationID: 3}
	existing := &models.InventoryItem{ID: 11, BoxID: 9, PartID: 2, PartNumber: "P1", Description: "Widget", Quantity: 5}

	repo.On("FindPartByNumber", mock.Anything, "P1").Return(part, nil)
	repo.On("FindLocationByName", mock.Anything, "A1").Return(loc, nil)
	repo.On("InsertBox", mock.Anything, "B1", int64(3)).Return(box, false, nil)
	repo.On("InsertInventoryItem", mock.Anything, mock.Anything).Return(existing, false, nil)

	// Same request again with a different quantity: the stored record
	// wins, nothing accumulates.
	res, err := svc.AddInventory(context.Background(), AddInventoryInput{
		BoxCode: "B1", PartNumber: "P1", Description: "ignored", LocationName: "A1", Quantity: 50,
	})
	require.NoError(t, err)
	assert.False(t, res.ItemCreated)
	assert.False(t, res.BoxCreated)
	assert.Equal(t, int64(11), res.Item.ID)
	assert.Equal(t, 5, res.Item.Quantity)
	assert.Equal(t, "Widget", res.Item.Description)
	assert.Empty(t, bus.Events())
}

func TestAddInventory_NegativeQuantityRejected(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	_, err := svc.AddInventory(context.Background(), AddInventoryInput{
		BoxCode: "B1", PartNumber: "P1", LocationName: "A1", Quantity: -1,
	})
	assertCode(t, err, "ValidationError")
	repo.AssertNotCalled(t, "FindPartByNumber", mock.Anything, mock.Anything)
}

func TestUpdateInventory_ReplacesFields(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	item := &models.InventoryItem{ID: 11, BoxID: 9, PartID: 2, PartNumber: "P1", Description: "old", Quantity: 5}
	part2 := &models.Part{ID: 4, PartNumber: "P2"}

	repo.On("FindItemByID", mock.Anything, int64(11)).Return(item, nil)
	repo.On("FindPartByNumber", mock.Anything, "P2").Return(part2, nil)
	repo.On("UpdateInventoryItem", mock.Anything, mock.MatchedBy(func(it *models.InventoryItem) bool {
		return it.ID == 11 && it.PartID == 4 && it.PartNumber == "P2" &&
			it.Description == "new desc" && it.Quantity == 7
	})).Return(true, nil)

	got, err := svc.UpdateInventory(context.Background(), 11, "P2", "new desc", 7)
	require.NoError(t, err)
	assert.Equal(t, "P2", got.PartNumber)
	assert.Equal(t, 7, got.Quantity)
}

func TestUpdateInventory_ItemNotFound(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("FindItemByID", mock.Anything, int64(404)).Return(nil, nil)

	_, err := svc.UpdateInventory(context.Background(), 404, "P2", "d", 7)
	assertCode(t, err, "ItemNotFound")
	repo.AssertNotCalled(t, "UpdateInventoryItem", mock.Anything, mock.Anything)
}

func TestUpdateInventory_UnknownPartRejected(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	item := &models.InventoryItem{ID: 11, PartID: 2, PartNumber: "P1"}
	repo.On("FindItemByID", mock.Anything, int64(11)).Return(item, nil)
	repo.On("FindPartByNumber", mock.Anything, "P404").Return(nil, nil)

	_, err := svc.UpdateInventory(context.Background(), 11, "P404", "d", 7)
	assertCode(t, err, "PartNotFound")
	repo.AssertNotCalled(t, "UpdateInventoryItem", mock.Anything, mock.Anything)
}

func TestDeleteBox_ReportsCascadedItems(t *testing.T) {
	repo := new(MockRepository)
	svc, bus := newTestService(repo)

	box := &models.Box{ID: 9, Code: "B1", LocationID: 3}
	items := []models.InventoryItem{{ID: 11, BoxID: 9}, {ID: 12, BoxID: 9}}
	repo.On("FindBoxByID", mock.Anything, int64(9)).Return(box, nil)
	repo.On("ListItemsByBox", mock.Anything, int64(9)).Return(items, nil)
	repo.On("DeleteBox", mock.Anything, int64(9)).Return(true, nil)

	require.NoError(t, svc.DeleteBox(context.Background(), 9))

	published := bus.Events()
	require.Len(t, published, 1)
	deleted, ok := published[0].(events.BoxDeletedEvent)
	require.True(t, ok)
	assert.Equal(t, 2, deleted.ItemsDeleted)
}

func TestDeleteBox_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("FindBoxByID", mock.Anything, int64(404)).Return(nil, nil)

	err := svc.DeleteBox(context.Background(), 404)
	assertCode(t, err, "BoxNotFound")
	repo.AssertNotCalled(t, "DeleteBox", mock.Anything, mock.Anything)
}

func TestDeleteInventory_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("DeleteInventoryItem", mock.Anything, int64(404)).Return(false, nil)

	err := svc.DeleteInventory(context.Background(), 404)
	assertCode(t, err, "ItemNotFound")
}
