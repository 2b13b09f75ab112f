package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/event-calendar/internal/persistence"
)

const eventColumns = `id, title, description, event_date, event_time, attachments, notifications_enabled, created_at, updated_at`

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool   *ConnectionPool
	mapper ErrorMapper
	retry  RetryConfig
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{pool: pool, retry: DefaultRetryConfig()}
}

// CreateEvent inserts a new event. Insertion order is kept by the seq column.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}

	attachments, err := encodeAttachments(event.Attachments)
	if err != nil {
		return err
	}

	query := `INSERT INTO events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return withRetry(ctx, r.retry, r.mapper, func() error {
		_, err := r.pool.db.ExecContext(ctx, query,
			event.ID,
			event.Title,
			event.Description,
			event.Date,
			event.Time,
			attachments,
			event.NotificationsEnabled,
			formatTimestamp(event.CreatedAt),
			formatTimestamp(event.UpdatedAt),
		)
		return err
	})
}

// UpdateEvent rewrites every mutable column of an existing event.
func (r *EventRepository) UpdateEvent(ctx context.Context, event persistence.Event) error {
	attachments, err := encodeAttachments(event.Attachments)
	if err != nil {
		return err
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE events
			SET title = ?, description = ?, event_date = ?, event_time = ?, attachments = ?, notifications_enabled = ?, updated_at = ?
			WHERE id = ?`,
			event.Title,
			event.Description,
			event.Date,
			event.Time,
			attachments,
			event.NotificationsEnabled,
			formatTimestamp(event.UpdatedAt),
			event.ID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// GetEvent retrieves an event by ID.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	if id == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	event, err := scanEvent(row)
	if err != nil {
		return persistence.Event{}, r.mapper.MapError(err)
	}
	return event, nil
}

// ListEvents returns events in insertion order.
func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var args []any
	if filter.DatePrefix != "" {
		query += ` WHERE substr(event_date, 1, ?) = ?`
		args = append(args, len(filter.DatePrefix), filter.DatePrefix)
	}
	query += ` ORDER BY seq ASC`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	events := make([]persistence.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return events, nil
}

// DeleteEvent removes an event by ID.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	var affected int64
	err := withRetry(ctx, r.retry, r.mapper, func() error {
		result, err := r.pool.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var (
		event                persistence.Event
		attachments          string
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Time,
		&attachments,
		&event.NotificationsEnabled,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Event{}, err
	}

	var err error
	if event.Attachments, err = decodeAttachments(attachments); err != nil {
		return persistence.Event{}, err
	}
	if event.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if event.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return event, nil
}

type attachmentRecord struct {
	Name string `json:"name"`
}

func encodeAttachments(attachments []persistence.Attachment) (string, error) {
	records := make([]attachmentRecord, 0, len(attachments))
	for _, attachment := range attachments {
		records = append(records, attachmentRecord{Name: attachment.Name})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode attachments: %w", err)
	}
	return string(data), nil
}

func decodeAttachments(raw string) ([]persistence.Attachment, error) {
	if raw == "" {
		return nil, nil
	}
	var records []attachmentRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("failed to decode attachments: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	attachments := make([]persistence.Attachment, 0, len(records))
	for _, record := range records {
		attachments = append(attachments, persistence.Attachment{Name: record.Name})
	}
	return attachments, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
