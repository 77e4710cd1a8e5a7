package auth

import (
	"github.com/google/uuid"

	"github.com/user/vidtube-go/apperror"
)

// RequireOwner returns a 403 error with message unless actor owns the resource.
func RequireOwner(ownerID, actorID uuid.UUID, message string) error {
	if ownerID != actorID {
		return apperror.NewForbiddenError(message, nil)
	}
	return nil
}
