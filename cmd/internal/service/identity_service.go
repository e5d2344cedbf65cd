package service

import (
	"context"
	"fmt"
	"notifyflow/cmd/internal/domain/entity"
)

// IdentityService answers "who is this claimed user id" for presence joins.
type IdentityService struct {
	UserRepo UserRepository
}

func NewIdentityService(userRepo UserRepository) *IdentityService {
	return &IdentityService{UserRepo: userRepo}
}

// ResolvePresenceUser returns the active account behind userID, or nil when
// the id is not positive, unknown, or suspended.
func (i *IdentityService) ResolvePresenceUser(ctx context.Context, userID int64) (*entity.User, error) {
	if userID <= 0 {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := i.UserRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}

	if user == nil || !user.Active {
		return nil, nil
	}
	return user, nil
}
