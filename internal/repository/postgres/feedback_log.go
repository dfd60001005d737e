package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

type FeedbackLogRepo struct {
	db *DB
}

func NewFeedbackLogRepo(db *DB) *FeedbackLogRepo {
	return &FeedbackLogRepo{db: db}
}

func (r *FeedbackLogRepo) Create(ctx context.Context, entry *domain.FeedbackLog) error {
	query := `
		INSERT INTO feedback_log (id, user_id, word_count, format, provider, status, degraded, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		entry.ID,
		entry.UserID,
		entry.WordCount,
		string(entry.Format),
		entry.Provider,
		entry.Status,
		entry.Degraded,
		entry.DurationMS,
	).Scan(&entry.CreatedAt)

	if err != nil {
		if isDuplicateError(err) {
			return domain.ErrDuplicateLog
		}
		return fmt.Errorf("create feedback log: %w", err)
	}

	return nil
}

func (r *FeedbackLogRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.FeedbackLog, error) {
	query := `
		SELECT id, user_id, word_count, format, provider, status, degraded, duration_ms, created_at
		FROM feedback_log
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback log: %w", err)
	}
	defer rows.Close()

	return scanFeedbackLogs(rows)
}

func (r *FeedbackLogRepo) CountByUserSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM feedback_log WHERE user_id = $1 AND created_at >= $2`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count feedback log: %w", err)
	}
	return count, nil
}

func scanFeedbackLogs(rows pgx.Rows) ([]domain.FeedbackLog, error) {
	entries := make([]domain.FeedbackLog, 0)
	for rows.Next() {
		var e domain.FeedbackLog
		var format string
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.WordCount,
			&format,
			&e.Provider,
			&e.Status,
			&e.Degraded,
			&e.DurationMS,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan feedback log: %w", err)
		}
		e.Format = domain.FormatKind(format)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}

// isDuplicateError - нарушение unique constraint в PostgreSQL
func isDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
