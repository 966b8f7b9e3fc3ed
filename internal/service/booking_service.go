package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns the booking lifecycle (create, one-time decision,
// visibility-checked reads) and the windowed state-filtered listings.
type BookingService struct {
	bookings domain.BookingRepository
	items    domain.ItemRepository
	users    domain.UserRepository
	cache    domain.ViewCache
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingRepository,
	items domain.ItemRepository,
	users domain.UserRepository,
	cache domain.ViewCache,
	clock domain.Clock,
	logger *zerolog.Logger,
) *BookingService {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		cache:    cache,
		clock:    clock,
		logger:   logger,
	}
}

// Create validates and persists a new WAITING booking. Booking one's own
// item is reported as item-not-found so ownership is not leaked. Overlapping
// requests on the same item are allowed; approval is the gating step.
func (s *BookingService) Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.BookingView, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, translateNotFound(err, "item", itemID)
	}
	booker, err := s.users.GetUserByID(ctx, bookerID)
	if err != nil {
		return nil, translateNotFound(err, "user", bookerID)
	}
	if !start.Before(end) {
		return nil, domain.BadRequest("invalid time range")
	}
	if item.OwnerID == bookerID {
		return nil, domain.NotFound("item", itemID)
	}
	if !item.Available {
		return nil, domain.BadRequest("item not available")
	}

	booking := &models.Booking{
		Start:    start,
		End:      end,
		ItemID:   itemID,
		BookerID: bookerID,
		Status:   models.StatusWaiting,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.invalidateOwner(ctx, item.OwnerID)
	s.logger.Info().Int64("booking_id", booking.ID).Int64("item_id", itemID).Int64("booker_id", bookerID).Msg("booking created")

	view := toBookingView(booking, item, booker)
	return &view, nil
}

// ChangeStatus performs the one-time WAITING -> APPROVED/REJECTED transition.
// Only the item owner may decide; everyone else sees booking-not-found. The
// store-level compare-and-set guarantees at most one of two concurrent
// decisions succeeds.
func (s *BookingService) ChangeStatus(ctx context.Context, callerID, bookingID int64, approved bool) (*models.BookingView, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, translateNotFound(err, "booking", bookingID)
	}
	item, err := s.items.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, translateNotFound(err, "item", booking.ItemID)
	}
	if item.OwnerID != callerID {
		return nil, domain.NotFound("booking", bookingID)
	}
	if booking.Status != models.StatusWaiting {
		return nil, domain.BadRequest("already decided")
	}

	status := models.StatusRejected
	if approved {
		status = models.StatusApproved
	}
	if err := s.bookings.DecideBooking(ctx, bookingID, status); err != nil {
		if errors.Is(err, database.ErrAlreadyDecided) {
			return nil, domain.BadRequest("already decided")
		}
		return nil, err
	}
	booking.Status = status

	metrics.IncBookingDecision(status)
	s.invalidateOwner(ctx, item.OwnerID)
	s.logger.Info().Int64("booking_id", bookingID).Str("status", status).Msg("booking decided")

	booker, err := s.users.GetUserByID(ctx, booking.BookerID)
	if err != nil {
		return nil, translateNotFound(err, "user", booking.BookerID)
	}
	view := toBookingView(booking, item, booker)
	return &view, nil
}

// GetBookingInfo is visible to the booker and the item owner only; anyone
// else gets booking-not-found.
func (s *BookingService) GetBookingInfo(ctx context.Context, callerID, bookingID int64) (*models.BookingView, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, translateNotFound(err, "booking", bookingID)
	}
	item, err := s.items.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, translateNotFound(err, "item", booking.ItemID)
	}
	if booking.BookerID != callerID && item.OwnerID != callerID {
		return nil, domain.NotFound("booking", bookingID)
	}

	booker, err := s.users.GetUserByID(ctx, booking.BookerID)
	if err != nil {
		return nil, translateNotFound(err, "user", booking.BookerID)
	}
	view := toBookingView(booking, item, booker)
	return &view, nil
}

// ListByBooker returns the caller's bookings filtered by state, windowed by
// (from, size). The page snaps to a boundary: offset = (from/size)*size.
func (s *BookingService) ListByBooker(ctx context.Context, callerID int64, rawState string, from, size int) ([]models.BookingView, error) {
	state, ok := models.ParseState(rawState)
	if !ok {
		return nil, &domain.UnsupportedStateError{State: rawState}
	}
	if _, err := s.users.GetUserByID(ctx, callerID); err != nil {
		return nil, translateNotFound(err, "user", callerID)
	}

	offset := pageOffset(from, size)
	now := s.clock.Now()

	var (
		bookings []*models.Booking
		err      error
	)
	switch state {
	case models.StateAll:
		bookings, err = s.bookings.GetBookerAll(ctx, callerID, offset, size)
	case models.StateCurrent:
		bookings, err = s.bookings.GetBookerCurrent(ctx, callerID, now, offset, size)
	case models.StatePast:
		bookings, err = s.bookings.GetBookerPast(ctx, callerID, now, offset, size)
	case models.StateFuture:
		bookings, err = s.bookings.GetBookerFuture(ctx, callerID, now, offset, size)
	case models.StateWaiting:
		bookings, err = s.bookings.GetBookerByStatus(ctx, callerID, models.StatusWaiting, offset, size)
	case models.StateRejected:
		bookings, err = s.bookings.GetBookerByStatus(ctx, callerID, models.StatusRejected, offset, size)
	default:
		return nil, &domain.UnsupportedStateError{State: rawState}
	}
	if err != nil {
		return nil, err
	}
	return s.assembleBookingViews(ctx, bookings)
}

// ListByOwner is ListByBooker for the owner role: bookings on the caller's
// items.
func (s *BookingService) ListByOwner(ctx context.Context, callerID int64, rawState string, from, size int) ([]models.BookingView, error) {
	state, ok := models.ParseState(rawState)
	if !ok {
		return nil, &domain.UnsupportedStateError{State: rawState}
	}
	if _, err := s.users.GetUserByID(ctx, callerID); err != nil {
		return nil, translateNotFound(err, "user", callerID)
	}

	offset := pageOffset(from, size)
	now := s.clock.Now()

	var (
		bookings []*models.Booking
		err      error
	)
	switch state {
	case models.StateAll:
		bookings, err = s.bookings.GetOwnerAll(ctx, callerID, offset, size)
	case models.StateCurrent:
		bookings, err = s.bookings.GetOwnerCurrent(ctx, callerID, now, offset, size)
	case models.StatePast:
		bookings, err = s.bookings.GetOwnerPast(ctx, callerID, now, offset, size)
	case models.StateFuture:
		bookings, err = s.bookings.GetOwnerFuture(ctx, callerID, now, offset, size)
	case models.StateWaiting:
		bookings, err = s.bookings.GetOwnerByStatus(ctx, callerID, models.StatusWaiting, offset, size)
	case models.StateRejected:
		bookings, err = s.bookings.GetOwnerByStatus(ctx, callerID, models.StatusRejected, offset, size)
	default:
		return nil, &domain.UnsupportedStateError{State: rawState}
	}
	if err != nil {
		return nil, err
	}
	return s.assembleBookingViews(ctx, bookings)
}

// assembleBookingViews resolves item and booker snapshots with two batched
// lookups instead of one pair of queries per row.
func (s *BookingService) assembleBookingViews(ctx context.Context, bookings []*models.Booking) ([]models.BookingView, error) {
	if len(bookings) == 0 {
		return []models.BookingView{}, nil
	}

	itemIDs := make([]int64, 0, len(bookings))
	userIDs := make([]int64, 0, len(bookings))
	seenItems := make(map[int64]bool)
	seenUsers := make(map[int64]bool)
	for _, b := range bookings {
		if !seenItems[b.ItemID] {
			seenItems[b.ItemID] = true
			itemIDs = append(itemIDs, b.ItemID)
		}
		if !seenUsers[b.BookerID] {
			seenUsers[b.BookerID] = true
			userIDs = append(userIDs, b.BookerID)
		}
	}

	items, err := s.items.GetItemsByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, toBookingView(b, items[b.ItemID], users[b.BookerID]))
	}
	return views, nil
}

func (s *BookingService) invalidateOwner(ctx context.Context, ownerID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateOwner(ctx, ownerID); err != nil {
		s.logger.Warn().Err(err).Int64("owner_id", ownerID).Msg("view cache invalidation failed")
	}
}

func toBookingView(b *models.Booking, item *models.Item, booker *models.User) models.BookingView {
	view := models.BookingView{
		ID:     b.ID,
		Start:  b.Start,
		End:    b.End,
		Status: b.Status,
	}
	if item != nil {
		view.Item = models.ItemShort{ID: item.ID, Name: item.Name}
	}
	if booker != nil {
		view.Booker = models.UserShort{ID: booker.ID, Name: booker.Name}
	}
	return view
}

// pageOffset snaps the window to a page boundary: page = from/size.
func pageOffset(from, size int) int {
	return (from / size) * size
}

func translateNotFound(err error, entity string, id int64) error {
	if errors.Is(err, database.ErrNotFound) {
		return domain.NotFound(entity, id)
	}
	return err
}
