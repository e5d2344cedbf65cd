package policy

import (
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/utils/apierror"
)

// UserPolicy encapsulates all business rules for user manipulation.
// It returns apierror.ErrorResponse directly for seamless integration with handlers.
type UserPolicy struct{}

func NewUserPolicy() *UserPolicy {
	return &UserPolicy{}
}

// IsAdmin checks if 'actor' may reach the admin surface at all.
func (p *UserPolicy) IsAdmin(actor *entity.User) apierror.ErrorResponse {
	if actor == nil || !actor.EffectiveRole().IsAdmin() {
		return apierror.AdminRequiredError
	}
	return nil
}

// CanSuspend checks if 'actor' can change the active flag of 'target'.
// Reactivating oneself is harmless, only self-suspension is refused.
func (p *UserPolicy) CanSuspend(actor, target *entity.User, suspend bool) apierror.ErrorResponse {
	if target == nil {
		return apierror.UserNotFoundError
	}

	if suspend && actor.ID == target.ID {
		return apierror.SelfSuspendError
	}
	return nil
}

// CanDelete checks if 'actor' can remove 'target' and everything it owns.
func (p *UserPolicy) CanDelete(actor, target *entity.User) apierror.ErrorResponse {
	if target == nil {
		return apierror.UserNotFoundError
	}

	if actor.ID == target.ID {
		return apierror.SelfDeleteError
	}
	return nil
}

// CanUpdateRole checks if 'newRole' can be assigned to 'target'.
func (p *UserPolicy) CanUpdateRole(target *entity.User, newRole entity.Role) apierror.ErrorResponse {
	if target == nil {
		return apierror.UserNotFoundError
	}

	if !newRole.Valid() {
		return apierror.NewSimple(400, "Role must be one of: user, admin")
	}
	return nil
}
