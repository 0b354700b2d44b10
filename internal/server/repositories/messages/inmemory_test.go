package messages

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/users"
)

func newInMemory(t *testing.T, usernames ...string) *InMemoryRepository {
	t.Helper()
	userRepo := users.NewInMemoryRepository()
	for _, name := range usernames {
		if _, err := userRepo.Create(context.Background(), &models.User{Username: name}); err != nil {
			t.Fatalf("Create(%s) error: %v", name, err)
		}
	}
	return NewInMemoryRepository(userRepo)
}

func TestInMemory_CreateRequiresExistingUsers(t *testing.T) {
	repo := newInMemory(t, "alice", "bob")

	m := &models.Message{ID: 1, FromUsername: "alice", ToUsername: "bob", Body: "hi", SentAt: time.Now()}
	if _, err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	bad := &models.Message{ID: 2, FromUsername: "alice", ToUsername: "ghost", Body: "hi", SentAt: time.Now()}
	if _, err := repo.Create(context.Background(), bad); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound for unknown recipient, got %v", err)
	}
}

func TestInMemory_MarkRead_Idempotent(t *testing.T) {
	repo := newInMemory(t, "alice", "bob")

	m := &models.Message{ID: 1, FromUsername: "alice", ToUsername: "bob", Body: "hi", SentAt: time.Now()}
	if _, err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	first := time.Now()
	got, err := repo.MarkRead(context.Background(), 1, first)
	if err != nil {
		t.Fatalf("MarkRead error: %v", err)
	}
	if got.ReadAt == nil || !got.ReadAt.Equal(first) {
		t.Fatalf("read timestamp not set: %+v", got)
	}

	again, err := repo.MarkRead(context.Background(), 1, first.Add(time.Hour))
	if err != nil {
		t.Fatalf("second MarkRead error: %v", err)
	}
	if !again.ReadAt.Equal(first) {
		t.Fatalf("read timestamp must not change: got %v want %v", again.ReadAt, first)
	}
}

func TestInMemory_MarkRead_NotFound(t *testing.T) {
	repo := newInMemory(t, "alice", "bob")

	if _, err := repo.MarkRead(context.Background(), 99, time.Now()); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

// Concurrent read-marks must record exactly one timestamp.
func TestInMemory_MarkRead_Concurrent(t *testing.T) {
	repo := newInMemory(t, "alice", "bob")

	m := &models.Message{ID: 1, FromUsername: "alice", ToUsername: "bob", Body: "hi", SentAt: time.Now()}
	if _, err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*models.Message, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := repo.MarkRead(context.Background(), 1, time.Now().Add(time.Duration(i)*time.Millisecond))
			if err != nil {
				t.Errorf("MarkRead error: %v", err)
				return
			}
			results[i] = got
		}(i)
	}
	wg.Wait()

	stored, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	for _, got := range results {
		if got == nil || got.ReadAt == nil || !got.ReadAt.Equal(*stored.ReadAt) {
			t.Fatalf("racing callers observed different read timestamps: %+v vs %+v", got, stored)
		}
	}
}

func TestInMemory_ListOrdering(t *testing.T) {
	repo := newInMemory(t, "alice", "bob")

	for i := int64(1); i <= 3; i++ {
		m := &models.Message{ID: i, FromUsername: "alice", ToUsername: "bob", Body: "hi", SentAt: time.Now()}
		if _, err := repo.Create(context.Background(), m); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	sent, err := repo.ListFrom(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListFrom error: %v", err)
	}
	if len(sent) != 3 || sent[0].ID != 1 || sent[2].ID != 3 {
		t.Fatalf("unexpected sent ordering: %+v", sent)
	}

	received, err := repo.ListTo(context.Background(), "bob")
	if err != nil {
		t.Fatalf("ListTo error: %v", err)
	}
	if len(received) != 3 {
		t.Fatalf("unexpected received listing: %+v", received)
	}

	none, err := repo.ListTo(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListTo error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty listing, got %+v", none)
	}
}
