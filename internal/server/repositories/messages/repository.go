package messages

import (
	"context"
	"time"

	"github.com/dmitrijs2005/messagely/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, message *models.Message) (*models.Message, error)
	Get(ctx context.Context, id int64) (*models.Message, error)

	// MarkRead sets the read timestamp only if it is currently null, as a
	// single atomic operation. Re-invoking on a read message returns the
	// stored record unchanged.
	MarkRead(ctx context.Context, id int64, at time.Time) (*models.Message, error)

	ListFrom(ctx context.Context, username string) ([]*models.Message, error)
	ListTo(ctx context.Context, username string) ([]*models.Message, error)
}
