package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"cityevents/internal/domain"
)

const eventColumns = `id, title, annotation, description, category_id, initiator_id,
		lat, lon, event_date, paid, participant_limit, request_moderation,
		state, created_on, published_on, confirmed_requests, views`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (title, annotation, description, category_id, initiator_id,
			lat, lon, event_date, paid, participant_limit, request_moderation,
			state, created_on, confirmed_requests, views)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	return q(ctx, r.DB).QueryRowContext(ctx, query,
		event.Title, event.Annotation, event.Description, event.CategoryID, event.InitiatorID,
		event.Location.Lat, event.Location.Lon, event.EventDate, event.Paid,
		event.ParticipantLimit, event.RequestModeration,
		event.State, event.CreatedOn, event.ConfirmedRequests, event.Views).
		Scan(&event.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	return scanEvent(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetByIDAndInitiator(ctx context.Context, eventID, initiatorID int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND initiator_id = $2`
	return scanEvent(q(ctx, r.DB).QueryRowContext(ctx, query, eventID, initiatorID))
}

func (r *eventRepository) ListByInitiator(ctx context.Context, initiatorID int64, page domain.Page) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE initiator_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, initiatorID, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, annotation = $2, description = $3, category_id = $4,
			lat = $5, lon = $6, event_date = $7, paid = $8, participant_limit = $9,
			request_moderation = $10, state = $11, published_on = $12
		WHERE id = $13
	`
	var publishedOn sql.NullTime
	if event.PublishedOn != nil {
		publishedOn = sql.NullTime{Time: *event.PublishedOn, Valid: true}
	}
	res, err := q(ctx, r.DB).ExecContext(ctx, query,
		event.Title, event.Annotation, event.Description, event.CategoryID,
		event.Location.Lat, event.Location.Lon, event.EventDate, event.Paid,
		event.ParticipantLimit, event.RequestModeration, event.State, publishedOn,
		event.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *eventRepository) UpdateConfirmedRequests(ctx context.Context, id int64, confirmed int) error {
	res, err := q(ctx, r.DB).ExecContext(ctx,
		`UPDATE events SET confirmed_requests = $1 WHERE id = $2`, confirmed, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *eventRepository) UpdateViews(ctx context.Context, id int64, views int64) error {
	res, err := q(ctx, r.DB).ExecContext(ctx,
		`UPDATE events SET views = $1 WHERE id = $2`, views, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *eventRepository) SearchPublic(ctx context.Context, filter domain.PublicSearchFilter) ([]*domain.Event, error) {
	conds := []string{"state = $1"}
	args := []any{domain.EventStatePublished}

	if filter.Text != "" {
		args = append(args, "%"+strings.ToLower(filter.Text)+"%")
		p := fmt.Sprintf("$%d", len(args))
		conds = append(conds, "(LOWER(title) LIKE "+p+" OR LOWER(annotation) LIKE "+p+")")
	}
	if len(filter.Categories) > 0 {
		args = append(args, pq.Array(filter.Categories))
		conds = append(conds, fmt.Sprintf("category_id = ANY($%d)", len(args)))
	}
	if filter.Paid != nil {
		args = append(args, *filter.Paid)
		conds = append(conds, fmt.Sprintf("paid = $%d", len(args)))
	}
	if filter.RangeStart != nil {
		args = append(args, *filter.RangeStart)
		conds = append(conds, fmt.Sprintf("event_date >= $%d", len(args)))
	}
	if filter.RangeEnd != nil {
		args = append(args, *filter.RangeEnd)
		conds = append(conds, fmt.Sprintf("event_date <= $%d", len(args)))
	}

	args = append(args, filter.Page.Limit(), filter.Page.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE %s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, eventColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := q(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *eventRepository) SearchAdmin(ctx context.Context, filter domain.AdminSearchFilter) ([]*domain.Event, error) {
	conds := []string{"TRUE"}
	var args []any

	if len(filter.Users) > 0 {
		args = append(args, pq.Array(filter.Users))
		conds = append(conds, fmt.Sprintf("initiator_id = ANY($%d)", len(args)))
	}
	if len(filter.States) > 0 {
		states := make([]string, 0, len(filter.States))
		for _, s := range filter.States {
			states = append(states, string(s))
		}
		args = append(args, pq.Array(states))
		conds = append(conds, fmt.Sprintf("state = ANY($%d)", len(args)))
	}
	if len(filter.Categories) > 0 {
		args = append(args, pq.Array(filter.Categories))
		conds = append(conds, fmt.Sprintf("category_id = ANY($%d)", len(args)))
	}
	if filter.RangeStart != nil {
		args = append(args, *filter.RangeStart)
		conds = append(conds, fmt.Sprintf("event_date >= $%d", len(args)))
	}
	if filter.RangeEnd != nil {
		args = append(args, *filter.RangeEnd)
		conds = append(conds, fmt.Sprintf("event_date <= $%d", len(args)))
	}

	args = append(args, filter.Page.Limit(), filter.Page.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE %s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, eventColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := q(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *eventRepository) ExistsByCategory(ctx context.Context, categoryID int64) (bool, error) {
	var exists bool
	err := q(ctx, r.DB).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE category_id = $1)`, categoryID).
		Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	event := &domain.Event{}
	var publishedOn sql.NullTime
	err := row.Scan(&event.ID, &event.Title, &event.Annotation, &event.Description,
		&event.CategoryID, &event.InitiatorID, &event.Location.Lat, &event.Location.Lon,
		&event.EventDate, &event.Paid, &event.ParticipantLimit, &event.RequestModeration,
		&event.State, &event.CreatedOn, &publishedOn, &event.ConfirmedRequests, &event.Views)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if publishedOn.Valid {
		t := publishedOn.Time
		event.PublishedOn = &t
	}
	return event, nil
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
