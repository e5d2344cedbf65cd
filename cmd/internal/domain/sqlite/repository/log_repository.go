package repository

import (
	"notifyflow/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultLogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) *DefaultLogRepository {
	return &DefaultLogRepository{db: db}
}

func (l *DefaultLogRepository) Save(entry *entity.SystemLog) error {
	return l.db.Save(entry).Error
}

func (l *DefaultLogRepository) FindLatest(limit int) ([]*entity.SystemLog, error) {
	var logs []*entity.SystemLog
	err := l.db.Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
