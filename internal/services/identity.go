package services

import (
	"context"
	"errors"

	"stitchlink/internal/domain/chat"
	stitch_errors "stitchlink/pkg/errors"
)

// Identity is the pre-authenticated (user, role) pair supplied by the edge.
// The engine performs no credential checks, only ownership and role checks
// against the data it owns.
type Identity struct {
	UserID uint
	Role   chat.Role
}

type ctxKey string

var identityKey ctxKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	value := ctx.Value(identityKey)
	if value == nil {
		return Identity{}, false
	}
	id, ok := value.(Identity)
	return id, ok
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, stitch_errors.ErrInvalidInput):
		return 400
	case errors.Is(err, stitch_errors.ErrUnauthorized):
		return 401
	case errors.Is(err, stitch_errors.ErrForbidden):
		return 403
	case errors.Is(err, stitch_errors.ErrNotFound):
		return 404
	case errors.Is(err, stitch_errors.ErrInvalidTransition):
		return 409
	case errors.Is(err, stitch_errors.ErrAlreadyExists), errors.Is(err, stitch_errors.ErrConflict):
		return 409
	case errors.Is(err, stitch_errors.ErrChatClosed):
		return 423
	default:
		return 500
	}
}
