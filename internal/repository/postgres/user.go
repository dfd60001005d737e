package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

const userColumns = `id, username, prompt, last_seen_at, created_at`

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, telegramID)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	if user.LastSeenAt.IsZero() {
		user.LastSeenAt = time.Now()
	}

	query := `
        INSERT INTO users (id, username, prompt, last_seen_at)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `
	err := r.db.Pool.QueryRow(ctx, query,
		user.TelegramID,
		user.Username,
		user.Prompt,
		user.LastSeenAt,
	).Scan(&user.CreatedAt)
	if err != nil {
		if isDuplicateError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	user.ID = user.TelegramID
	return nil
}

func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET username = $2, prompt = $3, last_seen_at = $4 WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, user.TelegramID, user.Username, user.Prompt, user.LastSeenAt)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Prompt, &u.LastSeenAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.TelegramID = u.ID
	return &u, nil
}
