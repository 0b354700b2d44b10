package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/authz"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/repomanager"
)

// MessageService owns the message state machine: creation, visibility, the
// one-way read transition, and the sent/received listings.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	node        *snowflake.Node
	logger      logging.Logger
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) (*MessageService, error) {
	// snowflake ids are monotonic, which also fixes the listing order
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("error creating id node: %w", err)
	}

	return &MessageService{
		db:          db,
		repomanager: m,
		node:        node,
		logger:      logger.With("module", "message_service"),
	}, nil
}

// Send creates an unread message. Both usernames must reference existing
// users; the repository reports a missing one as ErrorNotFound.
func (s *MessageService) Send(ctx context.Context, fromUsername, toUsername, body string) (*models.Message, error) {

	if toUsername == "" || body == "" {
		return nil, common.ErrorInvalidInput
	}

	message := &models.Message{
		ID:           s.node.Generate().Int64(),
		FromUsername: fromUsername,
		ToUsername:   toUsername,
		Body:         body,
		SentAt:       time.Now(),
	}

	repo := s.repomanager.Messages(s.db)

	message, err := repo.Create(ctx, message)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error creating message: %w", err)
	}

	return message, nil
}

// Get returns the message with both participants expanded, after checking
// that the identity is one of them.
func (s *MessageService) Get(ctx context.Context, id int64, identity string) (*models.MessageDetail, error) {

	repo := s.repomanager.Messages(s.db)

	message, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error getting message: %w", err)
	}

	if err := authz.CanViewMessage(identity, message); err != nil {
		return nil, err
	}

	from, err := s.profile(ctx, message.FromUsername)
	if err != nil {
		return nil, err
	}
	to, err := s.profile(ctx, message.ToUsername)
	if err != nil {
		return nil, err
	}

	return &models.MessageDetail{
		ID:     message.ID,
		Body:   message.Body,
		SentAt: message.SentAt,
		ReadAt: message.ReadAt,
		From:   *from,
		To:     *to,
	}, nil
}

// MarkRead transitions the message to read. Only the recipient may do this;
// the transition is idempotent and the stored timestamp never changes.
func (s *MessageService) MarkRead(ctx context.Context, id int64, identity string) (*models.Message, error) {

	repo := s.repomanager.Messages(s.db)

	message, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error getting message: %w", err)
	}

	if err := authz.CanMarkRead(identity, message); err != nil {
		return nil, err
	}

	message, err = repo.MarkRead(ctx, id, time.Now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error marking message read: %w", err)
	}

	return message, nil
}

// ListSent returns the messages sent by username, recipients expanded.
func (s *MessageService) ListSent(ctx context.Context, username string) ([]*models.SentMessage, error) {

	repo := s.repomanager.Messages(s.db)

	list, err := repo.ListFrom(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error listing sent messages: %w", err)
	}

	result := make([]*models.SentMessage, 0, len(list))
	profiles := map[string]*models.PublicProfile{}
	for _, m := range list {
		to, err := s.cachedProfile(ctx, profiles, m.ToUsername)
		if err != nil {
			return nil, err
		}
		result = append(result, &models.SentMessage{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
			To:     *to,
		})
	}

	return result, nil
}

// ListReceived returns the messages sent to username, senders expanded.
func (s *MessageService) ListReceived(ctx context.Context, username string) ([]*models.ReceivedMessage, error) {

	repo := s.repomanager.Messages(s.db)

	list, err := repo.ListTo(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error listing received messages: %w", err)
	}

	result := make([]*models.ReceivedMessage, 0, len(list))
	profiles := map[string]*models.PublicProfile{}
	for _, m := range list {
		from, err := s.cachedProfile(ctx, profiles, m.FromUsername)
		if err != nil {
			return nil, err
		}
		result = append(result, &models.ReceivedMessage{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
			From:   *from,
		})
	}

	return result, nil
}

func (s *MessageService) profile(ctx context.Context, username string) (*models.PublicProfile, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	p := user.Public()
	return &p, nil
}

func (s *MessageService) cachedProfile(ctx context.Context, cache map[string]*models.PublicProfile, username string) (*models.PublicProfile, error) {
	if p, ok := cache[username]; ok {
		return p, nil
	}
	p, err := s.profile(ctx, username)
	if err != nil {
		return nil, err
	}
	cache[username] = p
	return p, nil
}
