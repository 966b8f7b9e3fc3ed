package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// Clock supplies the reference "now" for temporal booking queries.
// Injected so tests control time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	SearchItems(ctx context.Context, text string, offset, limit int) ([]*models.Item, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)
}

// BookingRepository is the booking store. One query per role/state
// combination; list queries take the reference timestamp and a page window
// and return rows in the order the query defines.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)

	// DecideBooking moves a WAITING booking to APPROVED or REJECTED as an
	// atomic compare-and-set. Returns database.ErrAlreadyDecided when the
	// booking is no longer WAITING.
	DecideBooking(ctx context.Context, id int64, status string) error

	GetBookerAll(ctx context.Context, bookerID int64, offset, limit int) ([]*models.Booking, error)
	GetBookerCurrent(ctx context.Context, bookerID int64, now time.Time, offset, limit int) ([]*models.Booking, error)
	GetBookerPast(ctx context.Context, bookerID int64, now time.Time, offset, limit int) ([]*models.Booking, error)
	GetBookerFuture(ctx context.Context, bookerID int64, now time.Time, offset, limit int) ([]*models.Booking, error)
	GetBookerByStatus(ctx context.Context, bookerID int64, status string, offset, limit int) ([]*models.Booking, error)

	GetOwnerAll(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Booking, error)
	GetOwnerCurrent(ctx context.Context, ownerID int64, now time.Time, offset, limit int) ([]*models.Booking, error)
	GetOwnerPast(ctx context.Context, ownerID int64, now time.Time, offset, limit int) ([]*models.Booking, error)
	GetOwnerFuture(ctx context.Context, ownerID int64, now time.Time, offset, limit int) ([]*models.Booking, error)
	GetOwnerByStatus(ctx context.Context, ownerID int64, status string, offset, limit int) ([]*models.Booking, error)

	// Batched single-booking lookups for item listings: per item, the latest
	// booking that ended before now and the nearest booking starting after
	// now. Scoped to the owner's items, any status.
	GetLastBookings(ctx context.Context, itemIDs []int64, now time.Time, ownerID int64) (map[int64]*models.Booking, error)
	GetNextBookings(ctx context.Context, itemIDs []int64, now time.Time, ownerID int64) (map[int64]*models.Booking, error)

	// HasFinishedBooking reports whether the user had a booking of the item
	// that ended before now. Gates comment posting.
	HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)

	GetAllBookings(ctx context.Context) ([]*models.Booking, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItemIDs(ctx context.Context, itemIDs []int64) ([]*models.Comment, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetRequestsFromOthers(ctx context.Context, requestorID int64, offset, limit int) ([]*models.ItemRequest, error)
}

// ViewCache caches assembled owner item listings. Entries are time-relative
// (last/next bookings shift as now moves), so implementations keep a short
// TTL and writers invalidate the owner's entry. An entry remembers the page
// size it was built for and hits only on an exact size match; a listing
// cached for a smaller page must not answer a larger one.
type ViewCache interface {
	GetOwnerItems(ctx context.Context, ownerID int64, size int) ([]models.ItemView, bool, error)
	SetOwnerItems(ctx context.Context, ownerID int64, size int, views []models.ItemView) error
	InvalidateOwner(ctx context.Context, ownerID int64) error
}

// ReportWorker accepts asynchronous export jobs.
type ReportWorker interface {
	EnqueueBookingsExport(ctx context.Context) (string, error)
}
