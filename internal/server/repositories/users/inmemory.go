package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/server/models"
)

// InMemoryRepository is a mutex-guarded map-backed implementation used by
// tests and the in-memory repository manager. The mutex gives the same
// atomicity guarantees the database constraints give the Postgres
// implementation (unique usernames, no check-then-insert window).
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]models.User)}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return nil, common.ErrorDuplicateUsername
	}

	r.users[user.Username] = *user
	return user, nil
}

func (r *InMemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*models.UserSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.UserSummary, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, &models.UserSummary{
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })

	return result, nil
}

func (r *InMemoryRepository) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		return common.ErrorNotFound
	}
	u.LastLoginAt = at
	r.users[username] = u

	return nil
}
