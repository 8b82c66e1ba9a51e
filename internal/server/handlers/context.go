package handlers

import (
	"context"

	"github.com/iudanet/geojournal/internal/models"
)

// contextKey тип для ключей контекста
type contextKey string

// ownerKey ключ для хранения владельца запроса в контексте
const ownerKey contextKey = "owner"

// WithOwner attaches the authenticated owner to ctx.
func WithOwner(ctx context.Context, owner models.Owner) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

// OwnerFromContext извлекает владельца, установленного Gate
func OwnerFromContext(ctx context.Context) (models.Owner, bool) {
	owner, ok := ctx.Value(ownerKey).(models.Owner)
	return owner, ok
}
