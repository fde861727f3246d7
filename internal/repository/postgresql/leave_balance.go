package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/peoplecore/hrops-backend-go/internal/domain/leave"
	"github.com/peoplecore/hrops-backend-go/internal/pkg/database"
)

type balanceRepositoryImpl struct {
	db *database.DB
}

func NewBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &balanceRepositoryImpl{db: db}
}

// GetByUser implements leave.BalanceRepository.
func (r *balanceRepositoryImpl) GetByUser(ctx context.Context, username string) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT username, leave_type, balance_days, created_at, updated_at
		FROM leave_balances
		WHERE username = $1
		ORDER BY leave_type
	`

	rows, err := q.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make([]leave.Balance, 0)
	for rows.Next() {
		var b leave.Balance
		if err := rows.Scan(&b.Username, &b.Type, &b.Days, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// GetByUserAndType implements leave.BalanceRepository. A missing row reads
// as a zero balance; it is not persisted until explicitly set.
func (r *balanceRepositoryImpl) GetByUserAndType(ctx context.Context, username string, leaveType leave.LeaveType) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT username, leave_type, balance_days, created_at, updated_at
		FROM leave_balances
		WHERE username = $1 AND leave_type = $2
	`

	var b leave.Balance
	err := q.QueryRow(ctx, query, username, string(leaveType)).Scan(
		&b.Username, &b.Type, &b.Days, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{Username: username, Type: leaveType, Days: 0}, nil
		}
		return leave.Balance{}, err
	}
	return b, nil
}

// Upsert implements leave.BalanceRepository.
func (r *balanceRepositoryImpl) Upsert(ctx context.Context, username string, leaveType leave.LeaveType, days int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (username, leave_type, balance_days, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (username, leave_type)
		DO UPDATE SET balance_days = EXCLUDED.balance_days, updated_at = NOW()
	`

	_, err := q.Exec(ctx, query, username, string(leaveType), days)
	return err
}

// Debit implements leave.BalanceRepository. The balance guard lives in the
// WHERE clause so the check and the decrement are one statement; a
// concurrent approval that drained the row first makes this one affect zero
// rows.
func (r *balanceRepositoryImpl) Debit(ctx context.Context, username string, leaveType leave.LeaveType, days int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET balance_days = balance_days - $3, updated_at = NOW()
		WHERE username = $1 AND leave_type = $2 AND balance_days >= $3
	`

	result, err := q.Exec(ctx, query, username, string(leaveType), days)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		held, err := r.GetByUserAndType(ctx, username, leaveType)
		if err != nil {
			return err
		}
		return &leave.InsufficientBalanceError{Type: leaveType, Have: held.Days, Need: days}
	}

	return nil
}
