package service

import (
	"math/rand"
	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/utils"
	"notifyflow/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

const feedLimit = 20

type DashboardService struct {
	UserRepo         UserRepository
	EventRepo        EventRepository
	NotificationRepo NotificationRepository
}

func NewDashboardService(userRepo UserRepository, eventRepo EventRepository, notificationRepo NotificationRepository) *DashboardService {
	return &DashboardService{
		UserRepo:         userRepo,
		EventRepo:        eventRepo,
		NotificationRepo: notificationRepo,
	}
}

func (d *DashboardService) GetStats(actor *entity.User) (*contract.DashboardStats, apierror.ErrorResponse) {
	today := utils.StartOfDayUTC(utils.NowUTC())
	stats := &contract.DashboardStats{
		// Simulated, the dashboard only needs something that moves
		SystemHealth: 96 + rand.Intn(5),
	}

	var err error
	if stats.ActiveUsers, err = d.UserRepo.CountActive(); err != nil {
		log.Errorf("failed to count active users: %v", err)
		return nil, apierror.NewUnavailableError("load stats")
	}

	if stats.EventsToday, err = d.EventRepo.CountByUserSince(actor.ID, today); err != nil {
		log.Errorf("failed to count today's events of user %d: %v", actor.ID, err)
		return nil, apierror.NewUnavailableError("load stats")
	}

	if stats.NotificationsSent, err = d.NotificationRepo.CountByUser(actor.ID); err != nil {
		log.Errorf("failed to count notifications of user %d: %v", actor.ID, err)
		return nil, apierror.NewUnavailableError("load stats")
	}

	if stats.QueueDepth, err = d.NotificationRepo.CountByUserInStatuses(actor.ID, entity.QueuedStatuses...); err != nil {
		log.Errorf("failed to count queued notifications of user %d: %v", actor.ID, err)
		return nil, apierror.NewUnavailableError("load stats")
	}
	return stats, nil
}

func (d *DashboardService) GetEvents(actor *entity.User) ([]*contract.EventResponse, apierror.ErrorResponse) {
	events, err := d.EventRepo.FindLatestByUser(actor.ID, feedLimit)
	if err != nil {
		log.Errorf("failed to fetch events of user %d: %v", actor.ID, err)
		return nil, apierror.NewUnavailableError("load events")
	}

	resp := make([]*contract.EventResponse, len(events))
	for i, e := range events {
		resp[i] = toEventResponse(e)
	}
	return resp, nil
}

func (d *DashboardService) GetNotifications(actor *entity.User) ([]*contract.NotificationResponse, apierror.ErrorResponse) {
	notifications, err := d.NotificationRepo.FindLatestByUser(actor.ID, feedLimit)
	if err != nil {
		log.Errorf("failed to fetch notifications of user %d: %v", actor.ID, err)
		return nil, apierror.NewUnavailableError("load notifications")
	}

	resp := make([]*contract.NotificationResponse, len(notifications))
	for i, n := range notifications {
		id := n.ID
		resp[i] = &contract.NotificationResponse{
			ID:        &id,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Status:    n.Status,
			CreatedAt: utils.FormatISO(n.CreatedAt),
		}
	}
	return resp, nil
}

func (d *DashboardService) GetAnalytics(actor *entity.User) ([]*contract.AnalyticsPoint, apierror.ErrorResponse) {
	rows, err := d.EventRepo.HourlyByUser(actor.ID)
	if err != nil {
		log.Errorf("failed to aggregate events of user %d: %v", actor.ID, err)
		return nil, apierror.NewUnavailableError("load analytics")
	}

	points := make([]*contract.AnalyticsPoint, len(rows))
	for i, r := range rows {
		points[i] = &contract.AnalyticsPoint{HourSlot: r.HourSlot, Total: r.Total}
	}
	return points, nil
}

func toEventResponse(e *entity.Event) *contract.EventResponse {
	return &contract.EventResponse{
		ID:        e.ID,
		Type:      e.Type,
		Message:   e.Message,
		CreatedAt: utils.FormatISO(e.CreatedAt),
	}
}
