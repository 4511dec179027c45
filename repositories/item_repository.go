package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/blogem/corpdata-hub/database"
	"github.com/blogem/corpdata-hub/models"
)

var (
	// ErrItemNotFound is returned when no item exists under the requested id
	ErrItemNotFound = errors.New("item not found")

	// ErrPutNotApplied is returned when the store accepted a put without writing a row
	ErrPutNotApplied = errors.New("put did not modify any row")

	// ErrScanCorrupt is returned when a scanned row does not hold a valid item
	ErrScanCorrupt = errors.New("scan returned an unreadable item")
)

// ItemRepository is the gateway to the data collection
type ItemRepository interface {
	Get(ctx context.Context, id string) (models.Item, error)
	Put(ctx context.Context, id string, body []byte) error
	Scan(ctx context.Context) ([]models.Item, error)
	Ping(ctx context.Context) error
}

// itemRepository implements ItemRepository on SQLite
type itemRepository struct {
	db *database.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) ItemRepository {
	return &itemRepository{db: db}
}

// Get retrieves an item by id
func (r *itemRepository) Get(ctx context.Context, id string) (models.Item, error) {
	query := `SELECT body FROM ` + database.DataCollection + ` WHERE id = ?`

	var body []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item with id %q: %w", id, ErrItemNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	item, err := models.DecodeItem(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read item %q: %w", id, err)
	}
	return item, nil
}

// Put stores body under id, replacing any existing item wholesale
func (r *itemRepository) Put(ctx context.Context, id string, body []byte) error {
	query := `
		INSERT INTO ` + database.DataCollection + ` (id, body, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`

	result, err := r.db.ExecContext(ctx, query, id, string(body))
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("item with id %q: %w", id, ErrPutNotApplied)
	}

	return nil
}

// Scan retrieves every item in the data collection. There is no pagination.
func (r *itemRepository) Scan(ctx context.Context) ([]models.Item, error) {
	query := `SELECT id, body FROM ` + database.DataCollection + ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to scan items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}

		item, err := models.DecodeItem(body)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w: %v", id, ErrScanCorrupt, err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// Ping checks that the store is reachable
func (r *itemRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
