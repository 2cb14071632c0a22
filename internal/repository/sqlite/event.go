// Package sqlite stores events in a single SQLite file for single-node
// deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/models"
	"github.com/Kerhoff/ChurchCal/internal/repository"
)

//go:embed schema.sql
var schemaFS embed.FS

const eventColumns = `id, title, date, start_time, end_time, category, description, location, is_all_day, reminder, recurring, created_at, updated_at`

// Open connects to the database at path and applies the schema. Use
// ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	if err := applySchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func applySchema(ctx context.Context, db *sqlx.DB) error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

type eventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sqlx.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES (:id, :title, :date, :start_time, :end_time, :category, :description, :location, :is_all_day, :reminder, :recurring, :created_at, :updated_at)`

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	if _, err := r.db.NamedExecContext(ctx, query, eventArgs(event)); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	event := &models.Event{}
	err := r.db.GetContext(ctx, event, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) List(ctx context.Context, filters repository.EventFilters) ([]*models.Event, error) {
	var (
		where []string
		args  []interface{}
	)
	if filters.Date != nil {
		where = append(where, "date = ?")
		args = append(args, datecodec.ToPersisted(*filters.Date))
	}
	if filters.From != nil {
		where = append(where, "date >= ?")
		args = append(args, datecodec.ToPersisted(*filters.From))
	}
	if filters.To != nil {
		where = append(where, "date <= ?")
		args = append(args, datecodec.ToPersisted(*filters.To))
	}
	if filters.Category != nil {
		where = append(where, "category = ?")
		args = append(args, string(*filters.Category))
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, start_time ASC, created_at ASC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	var events []*models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	query := `
		UPDATE events
		SET title = :title, date = :date, start_time = :start_time, end_time = :end_time,
		    category = :category, description = :description, location = :location,
		    is_all_day = :is_all_day, reminder = :reminder, recurring = :recurring, updated_at = :updated_at
		WHERE id = :id`

	event.UpdatedAt = time.Now().UTC()

	result, err := r.db.NamedExecContext(ctx, query, eventArgs(event))
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	} else if n == 0 {
		return nil, repository.ErrNotFound
	}
	return event, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *eventRepository) DeleteRange(ctx context.Context, from, to datecodec.CalendarDate) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE date >= ? AND date <= ?`,
		datecodec.ToPersisted(from), datecodec.ToPersisted(to))
	if err != nil {
		return 0, fmt.Errorf("failed to delete events from %s to %s: %w", from, to, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// eventArgs flattens an event into plain driver values for named queries.
func eventArgs(e *models.Event) map[string]interface{} {
	return map[string]interface{}{
		"id":          e.ID,
		"title":       e.Title,
		"date":        datecodec.ToPersisted(e.Date),
		"start_time":  e.StartTime,
		"end_time":    e.EndTime,
		"category":    string(e.Category),
		"description": e.Description,
		"location":    e.Location,
		"is_all_day":  e.IsAllDay,
		"reminder":    e.Reminder,
		"recurring":   string(e.Recurring),
		"created_at":  e.CreatedAt,
		"updated_at":  e.UpdatedAt,
	}
}
