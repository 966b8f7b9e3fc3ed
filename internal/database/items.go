package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

const itemColumns = `id, name, description, available, owner_id, request_id, created_at, updated_at`

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (name, description, available, owner_id, request_id, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		item.Name, item.Description, item.Available, item.OwnerID, item.RequestID, now, now)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	var it models.Item
	err := db.QueryRowContext(ctx, query, id).Scan(
		&it.ID, &it.Name, &it.Description, &it.Available, &it.OwnerID, &it.RequestID, &it.CreatedAt, &it.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &it, nil
}

func (db *DB) GetItemsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Item, error) {
	if len(ids) == 0 {
		return map[int64]*models.Item{}, nil
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to get items by ids: %w", err)
	}
	defer rows.Close()

	items := make(map[int64]*models.Item, len(ids))
	for rows.Next() {
		it := &models.Item{}
		err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Available, &it.OwnerID, &it.RequestID, &it.CreatedAt, &it.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items[it.ID] = it
	}
	return items, rows.Err()
}

func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = ? ORDER BY id ASC LIMIT ? OFFSET ?`
	return db.queryItems(ctx, query, ownerID, limit, offset)
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, available = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, item.Name, item.Description, item.Available, time.Now().UTC(), item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchItems matches available items whose name or description contains the
// text, case-insensitive.
func (db *DB) SearchItems(ctx context.Context, text string, offset, limit int) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
              WHERE available = 1 AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)
              ORDER BY id ASC LIMIT ? OFFSET ?`
	pattern := "%" + text + "%"
	return db.queryItems(ctx, query, pattern, pattern, limit, offset)
}

func (db *DB) GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + itemColumns + ` FROM items
              WHERE request_id IN (` + placeholders(len(requestIDs)) + `) ORDER BY id ASC`
	return db.queryItems(ctx, query, int64Args(requestIDs)...)
}

func (db *DB) queryItems(ctx context.Context, query string, args ...interface{}) ([]*models.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		it := &models.Item{}
		err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Available, &it.OwnerID, &it.RequestID, &it.CreatedAt, &it.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
