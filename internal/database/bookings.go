package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

const bookingColumns = `id, "start", "end", item_id, booker_id, status, created_at, updated_at`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings ("start", "end", item_id, booker_id, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		utc(booking.Start),
		utc(booking.End),
		booking.ItemID,
		booking.BookerID,
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	var b models.Booking
	err := db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Start, &b.End, &b.ItemID, &b.BookerID, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// DecideBooking performs the one-time WAITING -> APPROVED/REJECTED
// transition. The status precondition lives in the UPDATE itself, so of two
// concurrent calls at most one sees an affected row.
func (db *DB) DecideBooking(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id, models.StatusWaiting)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrAlreadyDecided
	}
	return nil
}

func (db *DB) GetBookerAll(ctx context.Context, bookerID int64, offset, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE booker_id = ?
              ORDER BY "start" DESC LIMIT ? OFFSET ?`
	return db.queryBookings(ctx, query, bookerID, limit, offset)
}

func (db *DB) GetBookerCurrent(ctx context.Context, bookerID int64, now time.Time, offset, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE booker_id = ? AND "start" < ? AND "end" > ?
              ORDER BY "start" ASC LIMIT ? OFFSET ?`
	return db.queryBookings(ctx, query, bookerID, utc(now), utc(now), limit, offset)
}

func (db *DB) GetBookerPast(ctx context.Context, bookerID int64, now time.Time, offset, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE booker_id = ? AND "end" < ?
              ORDER BY "start" ASC LIMIT ? OFFSET ?`
	return db.queryBookings(ctx, query, bookerID, utc(now), limit, offset)
}

func (db *DB) GetBookerFuture(ctx context.Context, bookerID int64, now time.Time, offset, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE booker_id = ? AND "start" > ?
              ORDER BY "start" DESC LIMIT ? OFFSET ?`
	return db.queryBookings(ctx, query, bookerID, utc(now), limit, offset)
}

func (db *DB) GetBookerByStatus(ctx context.Context, bookerID int64, status string, offset, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE booker_id = ? AND status = ?
              ORDER BY "start" DESC LIMIT ? OFFSET ?`
	return db.queryBookings(ctx, query, bookerID, status, limit, offset)
}

const ownerBookingColumns = `b.id, b."start", b."end", b.item_id, b.booker_id, b.status, b.created_at, b.updated_at`

func (db *DB) GetOwnerAll(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + ownerBookingColumns + ` FROM bookings b
              JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ?
              ORDER BY b."start" DESC LIMIT ? OFFSET ?`
	return db.queryBookings(ctx, query, ownerID, limit, offset)
}

func (db *DB) GetOwnerCurrent(ctx context.Context, ownerID int64, now time.Time, offset, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + ownerBookingColumns + ` FROM bookings b
              JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ? AND b."start" < ? AND b."end" > ?
              ORDER BY b."start" ASC LIMIT ? OFFSET ?`
	return db.queryBookings(ctx, query, ownerID, utc(now), utc(now), limit, offset)
}

func (db *DB) GetOwnerPast(ctx context.Context, ownerID int64, now time.Time, offset, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + ownerBookingColumns + ` FROM bookings b
              JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ? AND b."end" < ?
              ORDER BY b."start" ASC LIMIT ? OFFSET ?`
	return db.queryBookings(ctx, query, ownerID, utc(now), limit, offset)
}

func (db *DB) GetOwnerFuture(ctx context.Context, ownerID int64, now time.Time, offset, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + ownerBookingColumns + ` FROM bookings b
              JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ? AND b."start" > ?
              ORDER BY b."start" DESC LIMIT ? OFFSET ?`
	return db.queryBookings(ctx, query, ownerID, utc(now), limit, offset)
}

func (db *DB) GetOwnerByStatus(ctx context.Context, ownerID int64, status string, offset, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + ownerBookingColumns + ` FROM bookings b
              JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ? AND b.status = ?
              ORDER BY b."start" DESC LIMIT ? OFFSET ?`
	return db.queryBookings(ctx, query, ownerID, status, limit, offset)
}

// GetLastBookings returns, per item, the booking with the greatest start
// among those that ended before now. Rows arrive ordered by start ascending
// and later rows overwrite earlier ones.
func (db *DB) GetLastBookings(ctx context.Context, itemIDs []int64, now time.Time, ownerID int64) (map[int64]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return map[int64]*models.Booking{}, nil
	}
	query := `SELECT ` + ownerBookingColumns + ` FROM bookings b
              JOIN items i ON i.id = b.item_id
              WHERE b."end" < ? AND b.item_id IN (` + placeholders(len(itemIDs)) + `) AND i.owner_id = ?
              ORDER BY b."start" ASC`
	args := append([]interface{}{utc(now)}, int64Args(itemIDs)...)
	args = append(args, ownerID)

	bookings, err := db.queryBookings(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	result := make(map[int64]*models.Booking, len(itemIDs))
	for _, b := range bookings {
		result[b.ItemID] = b
	}
	return result, nil
}

// GetNextBookings returns, per item, the booking with the smallest start
// among those starting after now. Descending order, later rows overwrite.
func (db *DB) GetNextBookings(ctx context.Context, itemIDs []int64, now time.Time, ownerID int64) (map[int64]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return map[int64]*models.Booking{}, nil
	}
	query := `SELECT ` + ownerBookingColumns + ` FROM bookings b
              JOIN items i ON i.id = b.item_id
              WHERE b."start" > ? AND b.item_id IN (` + placeholders(len(itemIDs)) + `) AND i.owner_id = ?
              ORDER BY b."start" DESC`
	args := append([]interface{}{utc(now)}, int64Args(itemIDs)...)
	args = append(args, ownerID)

	bookings, err := db.queryBookings(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	result := make(map[int64]*models.Booking, len(itemIDs))
	for _, b := range bookings {
		result[b.ItemID] = b
	}
	return result, nil
}

func (db *DB) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE booker_id = ? AND item_id = ? AND "end" < ?`
	var count int
	if err := db.QueryRowContext(ctx, query, bookerID, itemID, utc(now)).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count finished bookings: %w", err)
	}
	return count > 0, nil
}

func (db *DB) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY id ASC`
	return db.queryBookings(ctx, query)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		err := rows.Scan(
			&b.ID, &b.Start, &b.End, &b.ItemID, &b.BookerID, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return bookings, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
