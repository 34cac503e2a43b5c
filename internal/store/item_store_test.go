package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movinv/movinv/internal/domain"
)

func TestItemStoreCreateAndGet(t *testing.T) {
	database := openTestDB(t)
	store := NewItemStore(database)
	ctx := context.Background()
	session := createTestSession(t, database, "Move")

	photo, err := NewPhotoStore(database).Create(ctx, session.ID, "a.jpg", "image/jpeg")
	require.NoError(t, err)

	created, err := store.Create(ctx, &domain.Item{
		SessionID:    session.ID,
		PhotoID:      &photo.ID,
		Name:         "Medium boxes (est.)",
		Quantity:     4,
		Volume:       3,
		Weight:       25,
		Room:         "Kitchen",
		FoundInImage: 1,
		IsGoing:      true,
		AIGenerated:  true,
		Estimated:    true,
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "Medium boxes (est.)", created.Name)
	assert.Equal(t, 4, created.Quantity)
	assert.True(t, created.Estimated)
	require.NotNil(t, created.PhotoID)
	assert.Equal(t, photo.ID, *created.PhotoID)

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
}

func TestItemStoreGetMissing(t *testing.T) {
	store := NewItemStore(openTestDB(t))

	got, err := store.GetByID(context.Background(), 1234)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestItemStoreListOrderedByRoomThenName(t *testing.T) {
	database := openTestDB(t)
	store := NewItemStore(database)
	ctx := context.Background()
	session := createTestSession(t, database, "Move")

	for _, item := range []*domain.Item{
		{SessionID: session.ID, Name: "Sofa", Quantity: 1, Room: "Living Room", IsGoing: true},
		{SessionID: session.ID, Name: "Fridge", Quantity: 1, Room: "Kitchen", IsGoing: true},
		{SessionID: session.ID, Name: "Blender", Quantity: 1, Room: "Kitchen", IsGoing: true},
	} {
		_, err := store.Create(ctx, item)
		require.NoError(t, err)
	}

	items, err := store.ListBySessionID(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Blender", items[0].Name)
	assert.Equal(t, "Fridge", items[1].Name)
	assert.Equal(t, "Sofa", items[2].Name)
}

func TestItemStoreUpdate(t *testing.T) {
	database := openTestDB(t)
	store := NewItemStore(database)
	ctx := context.Background()
	session := createTestSession(t, database, "Move")

	item, err := store.Create(ctx, &domain.Item{SessionID: session.ID, Name: "Sofa", Quantity: 1, Room: "Living Room", IsGoing: true})
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, item.ID, "Sectional sofa", 1, 60, 150, "Living Room"))

	got, err := store.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sectional sofa", got.Name)
	assert.InDelta(t, 60, got.Volume, 1e-9)
	assert.InDelta(t, 150, got.Weight, 1e-9)

	assert.ErrorIs(t, store.Update(ctx, 9999, "x", 1, 0, 0, ""), domain.ErrNotFound)
}

func TestItemStoreSetGoing(t *testing.T) {
	database := openTestDB(t)
	store := NewItemStore(database)
	ctx := context.Background()
	session := createTestSession(t, database, "Move")

	item, err := store.Create(ctx, &domain.Item{SessionID: session.ID, Name: "Piano", Quantity: 1, Room: "Living Room", IsGoing: true})
	require.NoError(t, err)

	require.NoError(t, store.SetGoing(ctx, item.ID, false))

	got, err := store.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, got.IsGoing)
}

func TestItemStoreDelete(t *testing.T) {
	database := openTestDB(t)
	store := NewItemStore(database)
	ctx := context.Background()
	session := createTestSession(t, database, "Move")

	item, err := store.Create(ctx, &domain.Item{SessionID: session.ID, Name: "Rug", Quantity: 1, IsGoing: true})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, item.ID))
	assert.ErrorIs(t, store.Delete(ctx, item.ID), domain.ErrNotFound)
}

func TestItemStorePhotoDeleteKeepsItem(t *testing.T) {
	database := openTestDB(t)
	store := NewItemStore(database)
	ctx := context.Background()
	session := createTestSession(t, database, "Move")

	photo, err := NewPhotoStore(database).Create(ctx, session.ID, "a.jpg", "image/jpeg")
	require.NoError(t, err)
	item, err := store.Create(ctx, &domain.Item{SessionID: session.ID, PhotoID: &photo.ID, Name: "Sofa", Quantity: 1, IsGoing: true})
	require.NoError(t, err)

	require.NoError(t, NewPhotoStore(database).Delete(ctx, photo.ID))

	got, err := store.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.PhotoID)
}

func TestItemStoreDeleteBySessionID(t *testing.T) {
	database := openTestDB(t)
	store := NewItemStore(database)
	ctx := context.Background()
	session := createTestSession(t, database, "Move")

	for _, name := range []string{"Sofa", "Rug"} {
		_, err := store.Create(ctx, &domain.Item{SessionID: session.ID, Name: name, Quantity: 1, IsGoing: true})
		require.NoError(t, err)
	}

	require.NoError(t, store.DeleteBySessionID(ctx, session.ID))

	items, err := store.ListBySessionID(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
