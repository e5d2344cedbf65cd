package repository

import (
	"notifyflow/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *DefaultNotificationRepository {
	return &DefaultNotificationRepository{db: db}
}

// SaveAll inserts every notification in a single transaction.
func (n *DefaultNotificationRepository) SaveAll(notifications []*entity.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return n.db.CreateInBatches(notifications, 100).Error
}

func (n *DefaultNotificationRepository) FindLatestByUser(userID int64, limit int) ([]*entity.Notification, error) {
	var notifications []*entity.Notification
	err := n.db.Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (n *DefaultNotificationRepository) CountByUser(userID int64) (int64, error) {
	var total int64
	err := n.db.Model(&entity.Notification{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

func (n *DefaultNotificationRepository) CountByUserSince(userID, since int64) (int64, error) {
	var total int64
	err := n.db.Model(&entity.Notification{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&total).Error
	return total, err
}

func (n *DefaultNotificationRepository) CountByUserInStatuses(userID int64, statuses ...string) (int64, error) {
	var total int64
	err := n.db.Model(&entity.Notification{}).
		Where("user_id = ? AND status IN ?", userID, statuses).
		Count(&total).Error
	return total, err
}

func (n *DefaultNotificationRepository) CountInStatuses(statuses ...string) (int64, error) {
	var total int64
	err := n.db.Model(&entity.Notification{}).
		Where("status IN ?", statuses).
		Count(&total).Error
	return total, err
}
