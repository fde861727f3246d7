package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/peoplecore/hrops-backend-go/internal/domain/leave"
	"github.com/peoplecore/hrops-backend-go/internal/pkg/database"
)

type requestRepositoryImpl struct {
	db *database.DB
}

func NewRequestRepository(db *database.DB) leave.RequestRepository {
	return &requestRepositoryImpl{db: db}
}

const requestColumns = `
	id, username, leave_type, start_date, end_date, days, reason,
	status, approver, created_at, updated_at
`

func scanRequest(row pgx.Row) (leave.Request, error) {
	var r leave.Request
	err := row.Scan(
		&r.ID, &r.Username, &r.Type, &r.StartDate, &r.EndDate, &r.Days, &r.Reason,
		&r.Status, &r.Approver, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// Create implements leave.RequestRepository.
func (r *requestRepositoryImpl) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, username, leave_type, start_date, end_date, days, reason,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	request.ID = uuid.NewString()
	err := q.QueryRow(ctx, query,
		request.ID, request.Username, string(request.Type),
		request.StartDate, request.EndDate, request.Days, request.Reason,
		string(request.Status),
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.Request{}, err
	}
	return request, nil
}

// GetByID implements leave.RequestRepository.
func (r *requestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + requestColumns + ` FROM leave_requests WHERE id = $1`

	request, err := scanRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrRequestNotFound
		}
		return leave.Request{}, err
	}
	return request, nil
}

// ListByUser implements leave.RequestRepository.
func (r *requestRepositoryImpl) ListByUser(ctx context.Context, username string, status leave.RequestStatus) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + requestColumns + `
		FROM leave_requests
		WHERE username = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, username, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListAll implements leave.RequestRepository.
func (r *requestRepositoryImpl) ListAll(ctx context.Context, status leave.RequestStatus) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + requestColumns + `
		FROM leave_requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListApprovedOverlapping implements leave.RequestRepository. Overlap with
// [from, to]: start_date <= to AND end_date >= from. Empty username means
// every user.
func (r *requestRepositoryImpl) ListApprovedOverlapping(ctx context.Context, username string, from, to time.Time) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + requestColumns + `
		FROM leave_requests
		WHERE status = $1
		  AND ($2 = '' OR username = $2)
		  AND start_date <= $3 AND end_date >= $4
		ORDER BY start_date ASC`

	rows, err := q.Query(ctx, query, string(leave.RequestStatusApproved), username, to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// UpdateStatus implements leave.RequestRepository. The Pending guard in the
// WHERE clause makes the transition monotonic even under concurrent
// decisions.
func (r *requestRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.RequestStatus, approver *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2, approver = COALESCE($3, approver), updated_at = NOW()
		WHERE id = $1 AND status = $4
	`

	result, err := q.Exec(ctx, query, id, string(status), approver, string(leave.RequestStatusPending))
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return leave.ErrRequestAlreadyProcessed
	}
	return nil
}

func collectRequests(rows pgx.Rows) ([]leave.Request, error) {
	requests := make([]leave.Request, 0)
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}
