package repository

import (
	"notifyflow/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

// HourlyCount is one bucket of the per-hour event histogram.
type HourlyCount struct {
	HourSlot string
	Total    int64
}

type DefaultEventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *DefaultEventRepository {
	return &DefaultEventRepository{db: db}
}

func (e *DefaultEventRepository) Save(event *entity.Event) error {
	return e.db.Save(event).Error
}

func (e *DefaultEventRepository) FindLatestByUser(userID int64, limit int) ([]*entity.Event, error) {
	var events []*entity.Event
	err := e.db.Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (e *DefaultEventRepository) CountSince(since int64) (int64, error) {
	var total int64
	err := e.db.Model(&entity.Event{}).
		Where("created_at >= ?", since).
		Count(&total).Error
	return total, err
}

func (e *DefaultEventRepository) CountByUserSince(userID, since int64) (int64, error) {
	var total int64
	err := e.db.Model(&entity.Event{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&total).Error
	return total, err
}

// HourlyByUser groups the user's events per hour, oldest hour first.
func (e *DefaultEventRepository) HourlyByUser(userID int64) ([]*HourlyCount, error) {
	var rows []*HourlyCount
	err := e.db.Raw(`
		SELECT strftime('%H:00', created_at / 1000, 'unixepoch') AS hour_slot, COUNT(*) AS total
		FROM events
		WHERE user_id = ?
		GROUP BY created_at / 3600000
		ORDER BY created_at / 3600000 ASC`, userID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
