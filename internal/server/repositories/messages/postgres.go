package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgForeignKeyViolation = "23503"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the message. Sender and recipient existence is enforced by
// the foreign keys; a violation surfaces as common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, message *models.Message) (*models.Message, error) {

	query :=
		`INSERT INTO messages (id, from_username, to_username, body, sent_at, read_at)
         VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		message.ID, message.FromUsername, message.ToUsername, message.Body,
		message.SentAt, message.ReadAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return message, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Message, error) {
	query :=
		`SELECT id, from_username, to_username, body, sent_at, read_at FROM messages
		 WHERE id = $1
		 `

	m := &models.Message{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &m.SentAt, &m.ReadAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

// MarkRead performs the read transition as a conditional update, so two
// concurrent calls cannot both write a timestamp. The loser of the race (or
// any later call) gets the already-stored record back.
func (r *PostgresRepository) MarkRead(ctx context.Context, id int64, at time.Time) (*models.Message, error) {
	query :=
		`UPDATE messages SET read_at = $2
		 WHERE id = $1 AND read_at IS NULL
		 RETURNING id, from_username, to_username, body, sent_at, read_at
		 `

	m := &models.Message{}
	err := r.db.QueryRowContext(ctx, query, id, at).Scan(
		&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &m.SentAt, &m.ReadAt)

	if err == nil {
		return m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	// no unread row matched: either the message is already read or it does
	// not exist at all
	return r.Get(ctx, id)
}

func (r *PostgresRepository) ListFrom(ctx context.Context, username string) ([]*models.Message, error) {
	query :=
		`SELECT id, from_username, to_username, body, sent_at, read_at FROM messages
		 WHERE from_username = $1
		 ORDER BY id
		 `
	return r.list(ctx, query, username)
}

func (r *PostgresRepository) ListTo(ctx context.Context, username string) ([]*models.Message, error) {
	query :=
		`SELECT id, from_username, to_username, body, sent_at, read_at FROM messages
		 WHERE to_username = $1
		 ORDER BY id
		 `
	return r.list(ctx, query, username)
}

func (r *PostgresRepository) list(ctx context.Context, query, username string) ([]*models.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Message, 0)
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &m.SentAt, &m.ReadAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
