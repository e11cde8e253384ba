package api

import (
	"context"
	"net/http"

	"cardwall-api/domain"
	"cardwall-api/storage"
)

// CardStore abstracts the card collection for handlers.
type CardStore interface {
	Create(ctx context.Context, ownerID, title string, column domain.Column) (domain.Card, error)
	Get(ctx context.Context, id int64, callerID string) (domain.Card, error)
	List(ctx context.Context, ownerID string) ([]domain.Card, error)
	Update(ctx context.Context, id int64, callerID string, patch storage.Patch) (domain.Card, error)
	Delete(ctx context.Context, id int64, callerID string) error
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromHeader(http.Header) (string, error)
}
