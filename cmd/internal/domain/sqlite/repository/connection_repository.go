package repository

import (
	"notifyflow/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultConnectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *DefaultConnectionRepository {
	return &DefaultConnectionRepository{db: db}
}

func (c *DefaultConnectionRepository) Save(conn *entity.Connection) error {
	return c.db.Save(conn).Error
}

// Delete reports whether a row was actually removed.
func (c *DefaultConnectionRepository) Delete(connID string) (bool, error) {
	result := c.db.Delete(&entity.Connection{}, "connection_id = ?", connID)
	return result.RowsAffected > 0, result.Error
}

// DeleteAll wipes the registry; rows from a previous process are meaningless.
func (c *DefaultConnectionRepository) DeleteAll() error {
	return c.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entity.Connection{}).Error
}

// Exists reports whether connID is still registered.
func (c *DefaultConnectionRepository) Exists(connID string) (bool, error) {
	var count int64
	result := c.db.Model(&entity.Connection{}).
		Where("connection_id = ?", connID).
		Count(&count)
	return count > 0, result.Error
}

func (c *DefaultConnectionRepository) FindAll() ([]string, error) {
	var ids []string
	result := c.db.Model(&entity.Connection{}).Pluck("connection_id", &ids)
	return ids, result.Error
}

// FindStale returns connections whose last heartbeat happened before 'before'.
func (c *DefaultConnectionRepository) FindStale(before int64) ([]string, error) {
	var ids []string
	result := c.db.Model(&entity.Connection{}).
		Where("last_heartbeat_at < ?", before).
		Pluck("connection_id", &ids)
	return ids, result.Error
}

func (c *DefaultConnectionRepository) UpdateHeartbeat(connID string, at int64) error {
	return c.db.Model(&entity.Connection{}).
		Where("connection_id = ?", connID).
		Update("last_heartbeat_at", at).Error
}
