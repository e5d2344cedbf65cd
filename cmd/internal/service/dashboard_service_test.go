package service

import (
	"testing"

	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	dashboard := NewDashboardService(f.users, f.events, f.notifications)
	ana := f.addUser(t, "Ana", "ana@example.com", entity.RoleAdmin, true)
	f.addUser(t, "Bob", "bob@example.com", entity.RoleUser, true)
	f.addUser(t, "Sus", "sus@example.com", entity.RoleUser, false)

	now := utils.NowUTC()
	yesterday := utils.StartOfDayUTC(now) - 1
	require.NoError(t, f.events.Save(&entity.Event{UserID: ana.ID, Type: "t", Message: "today", CreatedAt: now}))
	require.NoError(t, f.events.Save(&entity.Event{UserID: ana.ID, Type: "t", Message: "old", CreatedAt: yesterday}))
	require.NoError(t, f.notifications.SaveAll([]*entity.Notification{
		{UserID: ana.ID, Type: "x", Title: "t", Message: "m", Status: entity.StatusQueued},
		{UserID: ana.ID, Type: "x", Title: "t", Message: "m", Status: entity.StatusDelivered},
	}))

	stats, apierr := dashboard.GetStats(ana)
	require.Nil(t, apierr)
	assert.EqualValues(t, 2, stats.ActiveUsers)
	assert.EqualValues(t, 1, stats.EventsToday)
	assert.EqualValues(t, 2, stats.NotificationsSent)
	assert.EqualValues(t, 1, stats.QueueDepth)
	assert.GreaterOrEqual(t, stats.SystemHealth, 96)
	assert.LessOrEqual(t, stats.SystemHealth, 100)
}

func TestDashboardFeedsAreNewestFirstAndCapped(t *testing.T) {
	f := newFixture(t)
	dashboard := NewDashboardService(f.users, f.events, f.notifications)
	ana := f.addUser(t, "Ana", "ana@example.com", entity.RoleAdmin, true)

	notifications := make([]*entity.Notification, 0, 25)
	for i := 0; i < 25; i++ {
		require.NoError(t, f.events.Save(&entity.Event{UserID: ana.ID, Type: "t", Message: "m", CreatedAt: int64(i + 1)}))
		notifications = append(notifications, &entity.Notification{UserID: ana.ID, Type: "x", Title: "t", Message: "m", Status: entity.StatusDelivered})
	}
	require.NoError(t, f.notifications.SaveAll(notifications))

	events, apierr := dashboard.GetEvents(ana)
	require.Nil(t, apierr)
	require.Len(t, events, 20)
	assert.Greater(t, events[0].ID, events[1].ID)

	feed, apierr := dashboard.GetNotifications(ana)
	require.Nil(t, apierr)
	require.Len(t, feed, 20)
	require.NotNil(t, feed[0].ID)
	assert.Greater(t, *feed[0].ID, *feed[1].ID)
}

func TestDashboardAnalytics(t *testing.T) {
	f := newFixture(t)
	dashboard := NewDashboardService(f.users, f.events, f.notifications)
	ana := f.addUser(t, "Ana", "ana@example.com", entity.RoleAdmin, true)

	points, apierr := dashboard.GetAnalytics(ana)
	require.Nil(t, apierr)
	assert.Empty(t, points)

	hour := int64(3_600_000)
	base := 20 * 24 * hour
	for _, at := range []int64{base + 5, base + 10, base + 2*hour} {
		require.NoError(t, f.events.Save(&entity.Event{UserID: ana.ID, Type: "t", Message: "m", CreatedAt: at}))
	}

	points, apierr = dashboard.GetAnalytics(ana)
	require.Nil(t, apierr)
	require.Len(t, points, 2)
	assert.Equal(t, "00:00", points[0].HourSlot)
	assert.EqualValues(t, 2, points[0].Total)
	assert.Equal(t, "02:00", points[1].HourSlot)
	assert.EqualValues(t, 1, points[1].Total)
}
