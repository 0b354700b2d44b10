package messages

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var msgCols = []string{"id", "from_username", "to_username", "body", "sent_at", "read_at"}

const insertQ = `(?s)^INSERT\s+INTO\s+messages\s*\(id,\s*from_username,\s*to_username,\s*body,\s*sent_at,\s*read_at\)`
const markReadQ = `(?s)^UPDATE\s+messages\s+SET\s+read_at\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s+AND\s+read_at\s+IS\s+NULL\s+RETURNING`
const getQ = `(?s)^SELECT\s+id,.*FROM\s+messages\s+WHERE\s+id\s*=\s*\$1`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	m := &models.Message{ID: 1, FromUsername: "alice", ToUsername: "bob", Body: "hi", SentAt: time.Now()}
	mock.ExpectExec(insertQ).
		WithArgs(m.ID, m.FromUsername, m.ToUsername, m.Body, m.SentAt, m.ReadAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Create(context.Background(), m)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("unexpected message: %+v", got)
	}
}

func TestCreate_UnknownUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	m := &models.Message{ID: 1, FromUsername: "alice", ToUsername: "ghost", Body: "hi", SentAt: time.Now()}
	mock.ExpectExec(insertQ).
		WithArgs(m.ID, m.FromUsername, m.ToUsername, m.Body, m.SentAt, m.ReadAt).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Create(context.Background(), m)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound for fk violation, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQ).WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 99)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestMarkRead_TransitionsUnread(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	rows := sqlmock.NewRows(msgCols).AddRow(int64(7), "alice", "bob", "hi", at.Add(-time.Minute), at)
	mock.ExpectQuery(markReadQ).WithArgs(int64(7), at).WillReturnRows(rows)

	got, err := repo.MarkRead(context.Background(), 7, at)
	if err != nil {
		t.Fatalf("MarkRead error: %v", err)
	}
	if got.ReadAt == nil || !got.ReadAt.Equal(at) {
		t.Fatalf("read timestamp not set: %+v", got)
	}
}

// The conditional update matches no row for an already-read message; the
// repository then returns the stored record unchanged.
func TestMarkRead_AlreadyRead(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	first := time.Now().Add(-time.Hour)
	at := time.Now()

	mock.ExpectQuery(markReadQ).WithArgs(int64(7), at).WillReturnError(sql.ErrNoRows)
	rows := sqlmock.NewRows(msgCols).AddRow(int64(7), "alice", "bob", "hi", first.Add(-time.Minute), first)
	mock.ExpectQuery(getQ).WithArgs(int64(7)).WillReturnRows(rows)

	got, err := repo.MarkRead(context.Background(), 7, at)
	if err != nil {
		t.Fatalf("MarkRead error: %v", err)
	}
	if got.ReadAt == nil || !got.ReadAt.Equal(first) {
		t.Fatalf("original read timestamp must be preserved: %+v", got)
	}
}

func TestMarkRead_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	mock.ExpectQuery(markReadQ).WithArgs(int64(99), at).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(getQ).WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)

	_, err := repo.MarkRead(context.Background(), 99, at)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestListFrom(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+messages\s+WHERE\s+from_username\s*=\s*\$1\s+ORDER\s+BY\s+id`
	sent := time.Now()
	rows := sqlmock.NewRows(msgCols).
		AddRow(int64(1), "alice", "bob", "hi", sent, nil).
		AddRow(int64(2), "alice", "carol", "hey", sent, nil)
	mock.ExpectQuery(q).WithArgs("alice").WillReturnRows(rows)

	got, err := repo.ListFrom(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListFrom error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected listing: %+v", got)
	}
}
