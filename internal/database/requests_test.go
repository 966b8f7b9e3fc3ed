package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

func seedRequest(t *testing.T, db *DB, requestorID int64, description string, created time.Time) *models.ItemRequest {
	t.Helper()
	r := &models.ItemRequest{Description: description, RequestorID: requestorID, Created: created}
	require.NoError(t, db.CreateRequest(context.Background(), r))
	return r
}

func TestRequestQueries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "Alice", "alice@example.com")
	bob := seedUser(t, db, "Bob", "bob@example.com")

	now := nowUTC()
	old := seedRequest(t, db, alice.ID, "need a drill", now.Add(-2*time.Hour))
	fresh := seedRequest(t, db, alice.ID, "need a ladder", now.Add(-time.Hour))
	bobs := seedRequest(t, db, bob.ID, "need a saw", now)

	got, err := db.GetRequestByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, "need a drill", got.Description)

	_, err = db.GetRequestByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	// Newest first.
	own, err := db.GetRequestsByRequestor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, fresh.ID, own[0].ID)
	assert.Equal(t, old.ID, own[1].ID)

	others, err := db.GetRequestsFromOthers(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, bobs.ID, others[0].ID)

	paged, err := db.GetRequestsFromOthers(ctx, bob.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, old.ID, paged[0].ID)
}

func TestComments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	author := seedUser(t, db, "Author", "author@example.com")
	item := seedItem(t, db, owner.ID, "Drill")
	other := seedItem(t, db, owner.ID, "Saw")

	now := nowUTC()
	second := &models.Comment{Text: "still great", ItemID: item.ID, AuthorID: author.ID, Created: now}
	require.NoError(t, db.CreateComment(ctx, second))
	first := &models.Comment{Text: "great drill", ItemID: item.ID, AuthorID: author.ID, Created: now.Add(-time.Hour)}
	require.NoError(t, db.CreateComment(ctx, first))

	comments, err := db.GetCommentsByItemIDs(ctx, []int64{item.ID, other.ID})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	// Oldest first.
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)

	none, err := db.GetCommentsByItemIDs(ctx, []int64{other.ID})
	require.NoError(t, err)
	assert.Empty(t, none)

	empty, err := db.GetCommentsByItemIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
