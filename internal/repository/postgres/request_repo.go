package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"cityevents/internal/domain"
)

type requestRepository struct {
	DB *sql.DB
}

func NewRequestRepository(db *sql.DB) domain.RequestRepository {
	return &requestRepository{
		DB: db,
	}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.ParticipationRequest) error {
	query := `
		INSERT INTO participation_requests (event_id, requester_id, created, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return q(ctx, r.DB).QueryRowContext(ctx, query, req.EventID, req.RequesterID, req.Created, req.Status).
		Scan(&req.ID)
}

func (r *requestRepository) GetByID(ctx context.Context, id int64) (*domain.ParticipationRequest, error) {
	query := `
		SELECT id, event_id, requester_id, created, status
		FROM participation_requests
		WHERE id = $1
	`
	return scanRequest(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *requestRepository) ExistsByEventAndRequester(ctx context.Context, eventID, requesterID int64) (bool, error) {
	var exists bool
	err := q(ctx, r.DB).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM participation_requests WHERE event_id = $1 AND requester_id = $2)`,
		eventID, requesterID).
		Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	query := `
		SELECT id, event_id, requester_id, created, status
		FROM participation_requests
		WHERE requester_id = $1
		ORDER BY created DESC
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, requesterID)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (r *requestRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	query := `
		SELECT id, event_id, requester_id, created, status
		FROM participation_requests
		WHERE event_id = $1
		ORDER BY id
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (r *requestRepository) ListByIDs(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	if len(ids) == 0 {
		return []*domain.ParticipationRequest{}, nil
	}
	query := `
		SELECT id, event_id, requester_id, created, status
		FROM participation_requests
		WHERE id = ANY($1)
		ORDER BY id
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	res, err := q(ctx, r.DB).ExecContext(ctx,
		`UPDATE participation_requests SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanRequest(row rowScanner) (*domain.ParticipationRequest, error) {
	req := &domain.ParticipationRequest{}
	err := row.Scan(&req.ID, &req.EventID, &req.RequesterID, &req.Created, &req.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func collectRequests(rows *sql.Rows) ([]*domain.ParticipationRequest, error) {
	defer rows.Close()
	var reqs []*domain.ParticipationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []*domain.ParticipationRequest{}
	}
	return reqs, nil
}
