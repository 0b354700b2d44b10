package messages

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/server/models"
)

// userChecker is the slice of the users repository the in-memory message
// store needs to stand in for the database foreign keys.
type userChecker interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// InMemoryRepository is a mutex-guarded implementation used by tests and the
// in-memory repository manager. The mutex makes the read transition a single
// atomic step, matching the conditional UPDATE of the Postgres version.
type InMemoryRepository struct {
	mu       sync.RWMutex
	users    userChecker
	messages map[int64]models.Message
	order    []int64
}

func NewInMemoryRepository(users userChecker) *InMemoryRepository {
	return &InMemoryRepository{
		users:    users,
		messages: make(map[int64]models.Message),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, message *models.Message) (*models.Message, error) {
	if _, err := r.users.GetByUsername(ctx, message.FromUsername); err != nil {
		return nil, err
	}
	if _, err := r.users.GetByUsername(ctx, message.ToUsername); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages[message.ID] = *message
	r.order = append(r.order, message.ID)
	return message, nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id int64) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.messages[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &m, nil
}

func (r *InMemoryRepository) MarkRead(ctx context.Context, id int64, at time.Time) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok {
		return nil, common.ErrorNotFound
	}

	if m.ReadAt == nil {
		readAt := at
		m.ReadAt = &readAt
		r.messages[id] = m
	}

	return &m, nil
}

func (r *InMemoryRepository) ListFrom(ctx context.Context, username string) ([]*models.Message, error) {
	return r.list(func(m *models.Message) bool { return m.FromUsername == username }), nil
}

func (r *InMemoryRepository) ListTo(ctx context.Context, username string) ([]*models.Message, error) {
	return r.list(func(m *models.Message) bool { return m.ToUsername == username }), nil
}

func (r *InMemoryRepository) list(match func(*models.Message) bool) []*models.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Message, 0)
	for _, id := range r.order {
		m := r.messages[id]
		if match(&m) {
			result = append(result, &m)
		}
	}
	return result
}
