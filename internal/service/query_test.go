package service

import (
	"context"
	"testing"

	"github.com/garrido-mendoza/PartsRepositoryAPI/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetBoxByCode_ResolvesLocationName(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	box := &models.Box{ID: 9, Code: "B1", LocationID: 3}
	loc := &models.Location{ID: 3, Name: "A1"}
	repo.On("FindBoxByCode", mock.Anything, "B1").Return(box, nil)
	repo.On("FindLocationByID", mock.Anything, int64(3)).Return(loc, nil)

	bd, err := svc.GetBoxByCode(context.Background(), "B1")
	require.NoError(t, err)
	assert.Equal(t, "B1", bd.Box.Code)
	assert.Equal(t, "A1", bd.LocationName)
}

func TestGetBoxByCode_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("FindBoxByCode", mock.Anything, "B404").Return(nil, nil)

	_, err := svc.GetBoxByCode(context.Background(), "B404")
	assertCode(t, err, "BoxNotFound")
}

func TestListBoxes_MemoizesLocationLookups(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	boxes := []models.Box{
		{ID: 9, Code: "B1", LocationID: 3},
		{ID: 10, Code: "B2", LocationID: 3},
	}
	loc := &models.Location{ID: 3, Name: "A1"}
	repo.On("ListBoxes", mock.Anything).Return(boxes, nil)
	// Both boxes share a location; it is fetched once.
	repo.On("FindLocationByID", mock.Anything, int64(3)).Return(loc, nil).Once()

	details, err := svc.ListBoxes(context.Background())
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "A1", details[0].LocationName)
	assert.Equal(t, "A1", details[1].LocationName)
	repo.AssertExpectations(t)
}

func TestListItemsForBox_BoxMustExist(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("FindBoxByCode", mock.Anything, "B404").Return(nil, nil)

	_, err := svc.ListItemsForBox(context.Background(), "B404")
	assertCode(t, err, "BoxNotFound")
	repo.AssertNotCalled(t, "ListItemsByBox", mock.Anything, mock.Anything)
}

func TestListItemsForBox_ResolvesNaturalKeys(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	box := &models.Box{ID: 9, Code: "B1", LocationID: 3}
	loc := &models.Location{ID: 3, Name: "A1"}
	items := []models.InventoryItem{
		{ID: 11, BoxID: 9, PartID: 2, PartNumber: "P1", Quantity: 5},
		{ID: 12, BoxID: 9, PartID: 4, PartNumber: "P2", Quantity: 3},
	}
	repo.On("FindBoxByCode", mock.Anything, "B1").Return(box, nil)
	repo.On("ListItemsByBox", mock.Anything, int64(9)).Return(items, nil)
	repo.On("FindBoxByID", mock.Anything, int64(9)).Return(box, nil).Once()
	repo.On("FindLocationByID", mock.Anything, int64(3)).Return(loc, nil).Once()

	details, err := svc.ListItemsForBox(context.Background(), "B1")
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "B1", details[0].BoxCode)
	assert.Equal(t, "A1", details[0].LocationName)
	assert.Equal(t, "P2", details[1].Item.PartNumber)
	repo.AssertExpectations(t)
}

func TestSearchItemsByPart_NoMatchIsEmpty(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("ListItemsByPartNumber", mock.Anything, "P404").Return([]models.InventoryItem{}, nil)

	details, err := svc.SearchItemsByPart(context.Background(), "P404")
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestGetInventoryItem_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("FindItemByID", mock.Anything, int64(404)).Return(nil, nil)

	_, err := svc.GetInventoryItem(context.Background(), 404)
	assertCode(t, err, "ItemNotFound")
}
