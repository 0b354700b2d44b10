package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/messages"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/users"
)

// InMemoryRepositoryManager hands out singleton in-memory repositories and
// ignores the connection argument. Used by tests.
type InMemoryRepositoryManager struct {
	users    *users.InMemoryRepository
	messages *messages.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	userRepo := users.NewInMemoryRepository()
	return &InMemoryRepositoryManager{
		users:    userRepo,
		messages: messages.NewInMemoryRepository(userRepo),
	}
}

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Messages(db dbx.DBTX) messages.Repository {
	return m.messages
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}
