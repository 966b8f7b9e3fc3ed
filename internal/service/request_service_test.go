package service

import (
	"context"
	"testing"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestService(t *testing.T, db *database.DB) *RequestService {
	logger := zerolog.Nop()
	return NewRequestService(db, db, db, fixedClock(), &logger)
}

func TestRequestLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := newRequestService(t, db)
	ctx := context.Background()

	alice := createUser(t, db, "Alice", "alice@example.com")
	bob := createUser(t, db, "Bob", "bob@example.com")

	request, err := svc.Create(ctx, alice.ID, "need a drill")
	require.NoError(t, err)
	assert.NotZero(t, request.ID)
	assert.Equal(t, fixedNow, request.Created)

	_, err = svc.Create(ctx, 9999, "need something")
	assert.True(t, domain.IsNotFound(err))

	// Bob offers an item for Alice's request.
	offered := &models.Item{Name: "Drill", Description: "600W", Available: true, OwnerID: bob.ID, RequestID: &request.ID}
	require.NoError(t, db.CreateItem(ctx, offered))

	own, err := svc.GetOwn(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Len(t, own[0].Items, 1)
	assert.Equal(t, offered.ID, own[0].Items[0].ID)

	// Own requests never show up in the all-others listing.
	allForAlice, err := svc.GetAll(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, allForAlice)

	allForBob, err := svc.GetAll(ctx, bob.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, allForBob, 1)
	assert.Equal(t, request.ID, allForBob[0].ID)

	byID, err := svc.GetByID(ctx, bob.ID, request.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, byID.ID)
	require.Len(t, byID.Items, 1)

	_, err = svc.GetByID(ctx, bob.ID, 9999)
	assert.True(t, domain.IsNotFound(err))

	_, err = svc.GetOwn(ctx, 9999)
	assert.True(t, domain.IsNotFound(err))
}
