package service

import (
	"testing"

	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/utils/apierror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoSessionLifecycle(t *testing.T) {
	demo := NewDemoService()

	session := demo.Start()
	_, err := uuid.Parse(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "demo", session.Mode)
	assert.Equal(t, session.ID, session.User.ID)
	assert.Equal(t, "admin", session.User.Role)
	assert.Equal(t, "demo@notifyflow.com", session.User.Email)
	assert.NotNil(t, session.Logs)
	assert.NotNil(t, session.Notifications)
	assert.Equal(t, 1, demo.Len())

	assert.Nil(t, demo.Logout(&contract.DemoLogoutRequest{SessionID: session.ID}))
	assert.Equal(t, 0, demo.Len())

	// unknown sessions log out fine
	assert.Nil(t, demo.Logout(&contract.DemoLogoutRequest{SessionID: "nope"}))
	assert.Equal(t, apierror.SessionIDRequiredError, demo.Logout(&contract.DemoLogoutRequest{SessionID: "  "}))
}

func TestDemoPurgeOlderThan(t *testing.T) {
	demo := NewDemoService()
	now := int64(1_000_000)
	demo.clock = func() int64 { return now }

	demo.Start()
	now += 5000
	demo.Start()

	now += 1000
	assert.Equal(t, 1, demo.PurgeOlderThan(3000))
	assert.Equal(t, 1, demo.Len())
	assert.Equal(t, 0, demo.PurgeOlderThan(3000))
}
