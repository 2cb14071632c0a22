package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/models"
	"github.com/Kerhoff/ChurchCal/internal/repository"
)

const eventColumns = `id, title, date, start_time, end_time, category, description, location, is_all_day, reminder, recurring, created_at, updated_at`

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	query := `
		INSERT INTO events (id, title, date, start_time, end_time, category, description, location, is_all_day, reminder, recurring, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		event.ID,
		event.Title,
		event.Date,
		nullClock(event.StartTime),
		nullClock(event.EndTime),
		string(event.Category),
		event.Description,
		event.Location,
		event.IsAllDay,
		event.Reminder,
		string(event.Recurring),
		event.CreatedAt,
		event.UpdatedAt,
	).Scan(&event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

func (r *eventRepository) List(ctx context.Context, filters repository.EventFilters) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filters.Date != nil {
		query += fmt.Sprintf(" AND date = $%d", argIdx)
		args = append(args, *filters.Date)
		argIdx++
	}
	if filters.From != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filters.From)
		argIdx++
	}
	if filters.To != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filters.To)
		argIdx++
	}
	if filters.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, string(*filters.Category))
		argIdx++
	}

	query += " ORDER BY date ASC, start_time ASC NULLS FIRST, created_at ASC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	query := `
		UPDATE events
		SET title = $2, date = $3, start_time = $4, end_time = $5, category = $6, description = $7,
		    location = $8, is_all_day = $9, reminder = $10, recurring = $11, updated_at = $12
		WHERE id = $1
		RETURNING updated_at`

	event.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		event.ID,
		event.Title,
		event.Date,
		nullClock(event.StartTime),
		nullClock(event.EndTime),
		string(event.Category),
		event.Description,
		event.Location,
		event.IsAllDay,
		event.Reminder,
		string(event.Recurring),
		event.UpdatedAt,
	).Scan(&event.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
	}

	return nil
}

func (r *eventRepository) DeleteRange(ctx context.Context, from, to datecodec.CalendarDate) (int64, error) {
	query := `DELETE FROM events WHERE date >= $1 AND date <= $2`

	result, err := r.db.ExecContext(ctx, query, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to delete events from %s to %s: %w", from, to, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	event := &models.Event{}
	var (
		startTime, endTime  sql.NullString
		category, recurring string
	)
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Date,
		&startTime,
		&endTime,
		&category,
		&event.Description,
		&event.Location,
		&event.IsAllDay,
		&event.Reminder,
		&recurring,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.StartTime = models.NormalizeClock(startTime.String)
	event.EndTime = models.NormalizeClock(endTime.String)
	event.Category = models.Category(category)
	event.Recurring = models.Recurrence(recurring)
	return event, nil
}

// nullClock stores an empty time of day as NULL.
func nullClock(clock string) sql.NullString {
	return sql.NullString{String: clock, Valid: clock != ""}
}
