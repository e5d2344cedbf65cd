package service

import (
	"fmt"
	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/utils"
	"notifyflow/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type EventService struct {
	UserRepo         UserRepository
	EventRepo        EventRepository
	NotificationRepo NotificationRepository
	Validate         *validator.Validate
	Audit            *AuditLogger
}

func NewEventService(userRepo UserRepository, eventRepo EventRepository, notificationRepo NotificationRepository,
	validate *validator.Validate, audit *AuditLogger) *EventService {
	return &EventService{
		UserRepo:         userRepo,
		EventRepo:        eventRepo,
		NotificationRepo: notificationRepo,
		Validate:         validate,
		Audit:            audit,
	}
}

func (e *EventService) TriggerEvent(actor *entity.User, req *contract.TriggerEventRequest) (*contract.EventResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := e.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err, "type and message are required")
	}

	event := &entity.Event{
		UserID:    actor.ID,
		Type:      req.Type,
		Message:   req.Message,
		CreatedAt: utils.NowUTC(),
	}

	if err := e.EventRepo.Save(event); err != nil {
		log.Errorf("failed to save event for user %d: %v", actor.ID, err)
		return nil, apierror.NewUnavailableError("save event")
	}

	e.Audit.Info(actor.ID, entity.CategoryEvent, fmt.Sprintf("Event %s: %s", req.Type, req.Message))
	return toEventResponse(event), nil
}

// Broadcast sends a notification to every active user and records the
// sender's own "broadcast" event.
func (e *EventService) Broadcast(actor *entity.User, req *contract.BroadcastRequest) (*contract.BroadcastResponse, apierror.ErrorResponse) {
	now := utils.NowUTC()
	recipients, apierr := e.notifyActiveUsers(req, now, "send broadcast")
	if apierr != nil {
		return nil, apierr
	}

	event := &entity.Event{
		UserID:    actor.ID,
		Type:      entity.NotificationTypeBroadcast,
		Message:   fmt.Sprintf("Broadcast sent: %q to %d recipients", req.Title, recipients),
		CreatedAt: now,
	}
	if err := e.EventRepo.Save(event); err != nil {
		log.Errorf("failed to save broadcast event for user %d: %v", actor.ID, err)
		return nil, apierror.NewUnavailableError("send broadcast")
	}

	e.Audit.Info(actor.ID, entity.CategoryBroadcast, fmt.Sprintf("Broadcast %q: %s", req.Title, req.Message))

	// Per-recipient rows have their own ids, the echo has none
	return &contract.BroadcastResponse{
		Notification: &contract.NotificationResponse{
			Type:      entity.NotificationTypeBroadcast,
			Title:     req.Title,
			Message:   req.Message,
			Status:    entity.StatusDelivered,
			CreatedAt: utils.FormatISO(now),
		},
		Recipients: recipients,
	}, nil
}

// SystemBroadcast is the admin console variant: no sender event, no echo.
func (e *EventService) SystemBroadcast(actor *entity.User, req *contract.BroadcastRequest) (*contract.BroadcastResponse, apierror.ErrorResponse) {
	recipients, apierr := e.notifyActiveUsers(req, utils.NowUTC(), "send system broadcast")
	if apierr != nil {
		return nil, apierr
	}

	e.Audit.Info(actor.ID, entity.CategoryAdminBroadcast, fmt.Sprintf("System broadcast %q: %s", req.Title, req.Message))
	return &contract.BroadcastResponse{Recipients: recipients}, nil
}

func (e *EventService) notifyActiveUsers(req *contract.BroadcastRequest, now int64, action string) (int, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := e.Validate.Struct(req); err != nil {
		return 0, apierror.FromValidationError(err, "title and message are required")
	}

	ids, err := e.UserRepo.FindActiveIDs()
	if err != nil {
		log.Errorf("failed to fetch active users: %v", err)
		return 0, apierror.NewUnavailableError(action)
	}

	notifications := make([]*entity.Notification, len(ids))
	for i, id := range ids {
		notifications[i] = &entity.Notification{
			UserID:    id,
			Type:      entity.NotificationTypeBroadcast,
			Title:     req.Title,
			Message:   req.Message,
			Status:    entity.StatusDelivered,
			CreatedAt: now,
		}
	}

	if err := e.NotificationRepo.SaveAll(notifications); err != nil {
		log.Errorf("failed to save %d broadcast notifications: %v", len(notifications), err)
		return 0, apierror.NewUnavailableError(action)
	}
	return len(ids), nil
}
