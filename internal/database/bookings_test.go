package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func seedItem(t *testing.T, db *DB, ownerID int64, name string) *models.Item {
	t.Helper()
	item := &models.Item{Name: name, Description: name + " description", Available: true, OwnerID: ownerID}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func seedBooking(t *testing.T, db *DB, itemID, bookerID int64, start, end time.Time, status string) *models.Booking {
	t.Helper()
	b := &models.Booking{Start: start, End: end, ItemID: itemID, BookerID: bookerID, Status: status}
	require.NoError(t, db.CreateBooking(context.Background(), b))
	return b
}

func TestCreateAndGetBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	booker := seedUser(t, db, "Booker", "booker@example.com")
	item := seedItem(t, db, owner.ID, "Drill")

	start := time.Now().Add(time.Hour)
	end := start.Add(2 * time.Hour)
	booking := seedBooking(t, db, item.ID, booker.ID, start, end, models.StatusWaiting)
	assert.NotZero(t, booking.ID)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)
	assert.Equal(t, models.StatusWaiting, got.Status)
	assert.Equal(t, item.ID, got.ItemID)
	assert.WithinDuration(t, start, got.Start, time.Second)

	_, err = db.GetBooking(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecideBookingOnce(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	booker := seedUser(t, db, "Booker", "booker@example.com")
	item := seedItem(t, db, owner.ID, "Drill")
	booking := seedBooking(t, db, item.ID, booker.ID, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour), models.StatusWaiting)

	require.NoError(t, db.DecideBooking(ctx, booking.ID, models.StatusApproved))

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	// Second decision hits the status guard.
	err = db.DecideBooking(ctx, booking.ID, models.StatusRejected)
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	got, err = db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestBookerStateQueries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	booker := seedUser(t, db, "Booker", "booker@example.com")
	item := seedItem(t, db, owner.ID, "Drill")

	now := time.Now().UTC()
	past1 := seedBooking(t, db, item.ID, booker.ID, now.Add(-72*time.Hour), now.Add(-70*time.Hour), models.StatusApproved)
	past2 := seedBooking(t, db, item.ID, booker.ID, now.Add(-48*time.Hour), now.Add(-46*time.Hour), models.StatusApproved)
	current := seedBooking(t, db, item.ID, booker.ID, now.Add(-time.Hour), now.Add(time.Hour), models.StatusApproved)
	future1 := seedBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(26*time.Hour), models.StatusWaiting)
	future2 := seedBooking(t, db, item.ID, booker.ID, now.Add(48*time.Hour), now.Add(50*time.Hour), models.StatusRejected)

	all, err := db.GetBookerAll(ctx, booker.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 5)
	// Start descending.
	assert.Equal(t, future2.ID, all[0].ID)
	assert.Equal(t, past1.ID, all[4].ID)

	cur, err := db.GetBookerCurrent(ctx, booker.ID, now, 0, 10)
	require.NoError(t, err)
	require.Len(t, cur, 1)
	assert.Equal(t, current.ID, cur[0].ID)

	past, err := db.GetBookerPast(ctx, booker.ID, now, 0, 10)
	require.NoError(t, err)
	require.Len(t, past, 2)
	// Start ascending.
	assert.Equal(t, past1.ID, past[0].ID)
	assert.Equal(t, past2.ID, past[1].ID)

	future, err := db.GetBookerFuture(ctx, booker.ID, now, 0, 10)
	require.NoError(t, err)
	require.Len(t, future, 2)
	// Start descending.
	assert.Equal(t, future2.ID, future[0].ID)
	assert.Equal(t, future1.ID, future[1].ID)

	waiting, err := db.GetBookerByStatus(ctx, booker.ID, models.StatusWaiting, 0, 10)
	require.NoError(t, err)
	require.Len(t, waiting, 1)
	assert.Equal(t, future1.ID, waiting[0].ID)

	rejected, err := db.GetBookerByStatus(ctx, booker.ID, models.StatusRejected, 0, 10)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, future2.ID, rejected[0].ID)
}

func TestOwnerStateQueries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	other := seedUser(t, db, "Other", "other@example.com")
	booker := seedUser(t, db, "Booker", "booker@example.com")
	ownItem := seedItem(t, db, owner.ID, "Drill")
	otherItem := seedItem(t, db, other.ID, "Saw")

	now := time.Now().UTC()
	mine := seedBooking(t, db, ownItem.ID, booker.ID, now.Add(24*time.Hour), now.Add(26*time.Hour), models.StatusWaiting)
	seedBooking(t, db, otherItem.ID, booker.ID, now.Add(24*time.Hour), now.Add(26*time.Hour), models.StatusWaiting)

	all, err := db.GetOwnerAll(ctx, owner.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, mine.ID, all[0].ID)

	waiting, err := db.GetOwnerByStatus(ctx, owner.ID, models.StatusWaiting, 0, 10)
	require.NoError(t, err)
	require.Len(t, waiting, 1)

	past, err := db.GetOwnerPast(ctx, owner.ID, now, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestBookingPagination(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	booker := seedUser(t, db, "Booker", "booker@example.com")
	item := seedItem(t, db, owner.ID, "Drill")

	now := time.Now().UTC()
	ids := make([]int64, 0, 5)
	for i := 0; i < 5; i++ {
		b := seedBooking(t, db, item.ID, booker.ID, now.Add(time.Duration(i+1)*24*time.Hour), now.Add(time.Duration(i+1)*24*time.Hour+2*time.Hour), models.StatusWaiting)
		ids = append(ids, b.ID)
	}

	// Descending start: ids[4], ids[3], ids[2], ids[1], ids[0].
	first, err := db.GetBookerAll(ctx, booker.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, ids[4], first[0].ID)
	assert.Equal(t, ids[3], first[1].ID)

	second, err := db.GetBookerAll(ctx, booker.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, ids[2], second[0].ID)
	assert.Equal(t, ids[1], second[1].ID)

	third, err := db.GetBookerAll(ctx, booker.ID, 4, 2)
	require.NoError(t, err)
	require.Len(t, third, 1)
	assert.Equal(t, ids[0], third[0].ID)
}

func TestLastAndNextBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	booker := seedUser(t, db, "Booker", "booker@example.com")
	item := seedItem(t, db, owner.ID, "Drill")
	spare := seedItem(t, db, owner.ID, "Saw")

	now := time.Now().UTC()
	seedBooking(t, db, item.ID, booker.ID, now.Add(-96*time.Hour), now.Add(-94*time.Hour), models.StatusApproved)
	lastWanted := seedBooking(t, db, item.ID, booker.ID, now.Add(-48*time.Hour), now.Add(-46*time.Hour), models.StatusApproved)
	nextWanted := seedBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(26*time.Hour), models.StatusWaiting)
	seedBooking(t, db, item.ID, booker.ID, now.Add(72*time.Hour), now.Add(74*time.Hour), models.StatusWaiting)

	itemIDs := []int64{item.ID, spare.ID}

	last, err := db.GetLastBookings(ctx, itemIDs, now, owner.ID)
	require.NoError(t, err)
	require.Contains(t, last, item.ID)
	assert.Equal(t, lastWanted.ID, last[item.ID].ID)
	assert.NotContains(t, last, spare.ID)

	next, err := db.GetNextBookings(ctx, itemIDs, now, owner.ID)
	require.NoError(t, err)
	require.Contains(t, next, item.ID)
	assert.Equal(t, nextWanted.ID, next[item.ID].ID)

	// Another owner sees nothing.
	stranger := seedUser(t, db, "Stranger", "stranger@example.com")
	none, err := db.GetLastBookings(ctx, itemIDs, now, stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	empty, err := db.GetLastBookings(ctx, nil, now, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestHasFinishedBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	booker := seedUser(t, db, "Booker", "booker@example.com")
	item := seedItem(t, db, owner.ID, "Drill")

	now := time.Now().UTC()

	ok, err := db.HasFinishedBooking(ctx, booker.ID, item.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	// Future booking does not count.
	seedBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(26*time.Hour), models.StatusApproved)
	ok, err = db.HasFinishedBooking(ctx, booker.ID, item.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	seedBooking(t, db, item.ID, booker.ID, now.Add(-48*time.Hour), now.Add(-46*time.Hour), models.StatusApproved)
	ok, err = db.HasFinishedBooking(ctx, booker.ID, item.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)
}
