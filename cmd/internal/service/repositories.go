package service

import (
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/domain/sqlite/repository"
)

type UserRepository interface {
	FindByID(id int64) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	ExistsByEmail(email string) (bool, error)
	Count() (int64, error)
	CountActive() (int64, error)
	FindActiveIDs() ([]int64, error)
	FindAllWithNotifications() ([]*repository.UserWithNotifications, error)
	TouchLastActive(id, at int64) error
	UpdateActive(id int64, active bool) error
	UpdateRole(id int64, role entity.Role) error
	Save(user *entity.User) error
	DeleteCascade(id int64) error
}

type EventRepository interface {
	Save(event *entity.Event) error
	FindLatestByUser(userID int64, limit int) ([]*entity.Event, error)
	CountSince(since int64) (int64, error)
	CountByUserSince(userID, since int64) (int64, error)
	HourlyByUser(userID int64) ([]*repository.HourlyCount, error)
}

type NotificationRepository interface {
	SaveAll(notifications []*entity.Notification) error
	FindLatestByUser(userID int64, limit int) ([]*entity.Notification, error)
	CountByUser(userID int64) (int64, error)
	CountByUserSince(userID, since int64) (int64, error)
	CountByUserInStatuses(userID int64, statuses ...string) (int64, error)
	CountInStatuses(statuses ...string) (int64, error)
}

type LogRepository interface {
	Save(entry *entity.SystemLog) error
	FindLatest(limit int) ([]*entity.SystemLog, error)
}
