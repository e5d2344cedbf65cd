package service

import (
	"context"
	"encoding/json"
	"fmt"
	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/domain/events"
	"notifyflow/cmd/internal/domain/policy"
	"notifyflow/cmd/internal/infrastructure/aws/storage"
	"notifyflow/cmd/internal/utils"
	"notifyflow/cmd/internal/utils/apierror"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const adminLogLimit = 200

// ConnectionTerminator hangs up every live connection of a user.
type ConnectionTerminator interface {
	TerminateUserConnections(ctx context.Context, userID int64, ck *events.ConnectionKill)
}

type PresenceReader interface {
	Snapshot(ctx context.Context) (*contract.PresenceSnapshot, error)
}

type AdminService struct {
	UserRepo         UserRepository
	EventRepo        EventRepository
	NotificationRepo NotificationRepository
	LogRepo          LogRepository
	Validate         *validator.Validate
	UserPolicy       *policy.UserPolicy
	Audit            *AuditLogger
	System           *SystemService
	Sockets          ConnectionTerminator
	Presence         PresenceReader

	// Archive is nil when no bucket is configured
	Archive storage.S3Client
}

func (a *AdminService) GetStats() (*contract.AdminStats, apierror.ErrorResponse) {
	today := utils.StartOfDayUTC(utils.NowUTC())
	stats := &contract.AdminStats{SystemHealth: a.System.Uptime()}

	var err error
	if stats.TotalUsers, err = a.UserRepo.Count(); err != nil {
		log.Errorf("failed to count users: %v", err)
		return nil, apierror.NewUnavailableError("load admin stats")
	}

	if stats.EventsToday, err = a.EventRepo.CountSince(today); err != nil {
		log.Errorf("failed to count today's events: %v", err)
		return nil, apierror.NewUnavailableError("load admin stats")
	}

	if stats.QueueDepth, err = a.NotificationRepo.CountInStatuses(entity.QueuedStatuses...); err != nil {
		log.Errorf("failed to count queued notifications: %v", err)
		return nil, apierror.NewUnavailableError("load admin stats")
	}
	return stats, nil
}

func (a *AdminService) GetUsers() ([]*contract.AdminUserResponse, apierror.ErrorResponse) {
	users, err := a.UserRepo.FindAllWithNotifications()
	if err != nil {
		log.Errorf("failed to list users: %v", err)
		return nil, apierror.NewUnavailableError("load users")
	}

	resp := make([]*contract.AdminUserResponse, len(users))
	for i, u := range users {
		var lastActive *string
		if u.LastActiveAt > 0 {
			formatted := utils.FormatISO(u.LastActiveAt)
			lastActive = &formatted
		}

		resp[i] = &contract.AdminUserResponse{
			ID:                     u.ID,
			Name:                   u.Name,
			Email:                  u.Email,
			Role:                   string(u.EffectiveRole()),
			IsActive:               u.Active,
			CreatedAt:              utils.FormatISO(u.CreatedAt),
			LastActive:             lastActive,
			TotalNotificationsSent: u.TotalNotifications,
		}
	}
	return resp, nil
}

// SetSuspended flips the active flag of a user. Suspending also drops the
// user's live connections, which removes the user from presence.
func (a *AdminService) SetSuspended(ctx context.Context, actor *entity.User, targetID int64, req *contract.SuspendRequest) apierror.ErrorResponse {
	target, apierr := a.fetchTarget(targetID)
	if apierr != nil {
		return apierr
	}

	if perr := a.UserPolicy.CanSuspend(actor, target, req.Suspended); perr != nil {
		return perr
	}

	if err := a.UserRepo.UpdateActive(target.ID, !req.Suspended); err != nil {
		log.Errorf("actor %d failed to update status of user %d: %v", actor.ID, target.ID, err)
		return apierror.NewUnavailableError("update user status")
	}

	verb := "Reactivated"
	if req.Suspended {
		verb = "Suspended"
		a.Sockets.TerminateUserConnections(ctx, target.ID, &events.ConnectionKill{Code: contract.KillCodeSuspended})
	}

	a.Audit.Info(actor.ID, entity.CategoryAdmin, fmt.Sprintf("%s user #%d", verb, target.ID))
	return nil
}

func (a *AdminService) SetRole(actor *entity.User, targetID int64, req *contract.RoleRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if req.Role == "" {
		req.Role = string(entity.RoleUser)
	}

	if err := a.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err, "Role must be user or admin")
	}

	target, apierr := a.fetchTarget(targetID)
	if apierr != nil {
		return apierr
	}

	role := entity.Role(req.Role)
	if perr := a.UserPolicy.CanUpdateRole(target, role); perr != nil {
		return perr
	}

	if err := a.UserRepo.UpdateRole(target.ID, role); err != nil {
		log.Errorf("actor %d failed to change role of user %d: %v", actor.ID, target.ID, err)
		return apierror.NewUnavailableError("change user role")
	}

	a.Audit.Info(actor.ID, entity.CategoryAdmin, fmt.Sprintf("Changed user #%d role to %s", target.ID, role))
	return nil
}

func (a *AdminService) DeleteUser(ctx context.Context, actor *entity.User, targetID int64) apierror.ErrorResponse {
	if actor.ID == targetID {
		return apierror.SelfDeleteError
	}

	target, apierr := a.fetchTarget(targetID)
	if apierr != nil {
		return apierr
	}

	if perr := a.UserPolicy.CanDelete(actor, target); perr != nil {
		return perr
	}

	if err := a.UserRepo.DeleteCascade(target.ID); err != nil {
		log.Errorf("actor %d failed to delete user %d: %v", actor.ID, target.ID, err)
		return apierror.NewUnavailableError("delete user")
	}

	a.Sockets.TerminateUserConnections(ctx, target.ID, &events.ConnectionKill{Code: contract.KillCodeDeleted})
	a.Audit.Info(actor.ID, entity.CategoryAdmin, fmt.Sprintf("Deleted user #%d", target.ID))
	return nil
}

func (a *AdminService) GetLogs() ([]*contract.LogResponse, apierror.ErrorResponse) {
	logs, err := a.LogRepo.FindLatest(adminLogLimit)
	if err != nil {
		log.Errorf("failed to fetch system logs: %v", err)
		return nil, apierror.NewUnavailableError("load logs")
	}

	resp := make([]*contract.LogResponse, len(logs))
	for i, l := range logs {
		resp[i] = &contract.LogResponse{
			ID:        l.ID,
			UserID:    l.UserID,
			Level:     l.Level,
			Category:  l.Category,
			Message:   l.Message,
			CreatedAt: utils.FormatISO(l.CreatedAt),
		}
	}
	return resp, nil
}

// GetOnlineUsers is the polling twin of the presence:update broadcast.
func (a *AdminService) GetOnlineUsers(ctx context.Context) (*contract.PresenceSnapshot, apierror.ErrorResponse) {
	snap, err := a.Presence.Snapshot(ctx)
	if err != nil {
		log.Errorf("failed to read presence snapshot: %v", err)
		return nil, apierror.NewUnavailableError("load online users")
	}
	return snap, nil
}

// ExportLogs uploads the latest logs as a JSON document to the archive bucket.
func (a *AdminService) ExportLogs(ctx context.Context, actor *entity.User) (*contract.LogExportResponse, apierror.ErrorResponse) {
	if a.Archive == nil {
		return nil, apierror.ArchiveUnavailableError
	}

	logs, apierr := a.GetLogs()
	if apierr != nil {
		return nil, apierr
	}

	data, err := json.Marshal(logs)
	if err != nil {
		log.Errorf("failed to encode %d logs for export: %v", len(logs), err)
		return nil, apierror.NewUnavailableError("export logs")
	}

	date := time.UnixMilli(utils.NowUTC()).UTC().Format(time.DateOnly)
	key := strings.Join([]string{"logs", date, uuid.NewString() + ".json"}, "/")
	if err := a.Archive.UploadFile(ctx, key, data); err != nil {
		log.Errorf("actor %d failed to export logs: %v", actor.ID, err)
		return nil, apierror.NewUnavailableError("export logs")
	}

	a.Audit.Info(actor.ID, entity.CategoryAdmin, fmt.Sprintf("Exported %d logs to %s", len(logs), key))
	return &contract.LogExportResponse{Key: key, Entries: len(logs)}, nil
}

func (a *AdminService) fetchTarget(id int64) (*entity.User, apierror.ErrorResponse) {
	if id <= 0 {
		return nil, apierror.NewInvalidParamTypeError("id", "int")
	}

	user, err := a.UserRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch user %d: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.UserNotFoundError
	}
	return user, nil
}
