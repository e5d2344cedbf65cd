package policy

import (
	"testing"

	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/utils/apierror"

	"github.com/stretchr/testify/assert"
)

func TestIsAdmin(t *testing.T) {
	p := NewUserPolicy()

	assert.Nil(t, p.IsAdmin(&entity.User{Role: entity.RoleAdmin}))
	assert.Nil(t, p.IsAdmin(&entity.User{Role: "Admin"}))
	assert.Equal(t, apierror.AdminRequiredError, p.IsAdmin(&entity.User{Role: entity.RoleUser}))
	assert.Equal(t, apierror.AdminRequiredError, p.IsAdmin(&entity.User{}))
	assert.Equal(t, apierror.AdminRequiredError, p.IsAdmin(nil))
}

func TestCanSuspend(t *testing.T) {
	p := NewUserPolicy()
	admin := &entity.User{ID: 1, Role: entity.RoleAdmin}
	target := &entity.User{ID: 2}

	assert.Nil(t, p.CanSuspend(admin, target, true))
	assert.Equal(t, apierror.SelfSuspendError, p.CanSuspend(admin, admin, true))
	assert.Nil(t, p.CanSuspend(admin, admin, false))
	assert.Equal(t, apierror.UserNotFoundError, p.CanSuspend(admin, nil, true))
}

func TestCanDelete(t *testing.T) {
	p := NewUserPolicy()
	admin := &entity.User{ID: 1, Role: entity.RoleAdmin}

	assert.Nil(t, p.CanDelete(admin, &entity.User{ID: 2}))
	assert.Equal(t, apierror.SelfDeleteError, p.CanDelete(admin, admin))
	assert.Equal(t, apierror.UserNotFoundError, p.CanDelete(admin, nil))
}

func TestCanUpdateRole(t *testing.T) {
	p := NewUserPolicy()
	target := &entity.User{ID: 2}

	assert.Nil(t, p.CanUpdateRole(target, entity.RoleAdmin))
	assert.Equal(t, apierror.UserNotFoundError, p.CanUpdateRole(nil, entity.RoleUser))
	assert.Equal(t, 400, p.CanUpdateRole(target, "root").Code())
}
