package repository

import (
	"errors"
	"notifyflow/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

// UserWithNotifications is a user row plus the number of notifications addressed to it.
type UserWithNotifications struct {
	entity.User
	TotalNotifications int64
}

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindByID(id int64) (*entity.User, error) {
	var user entity.User
	err := u.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *DefaultUserRepository) FindByEmail(email string) (*entity.User, error) {
	var user entity.User
	err := u.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *DefaultUserRepository) ExistsByEmail(email string) (bool, error) {
	var exists int
	err := u.db.
		Raw("SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", email).
		Scan(&exists).Error
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

func (u *DefaultUserRepository) Count() (int64, error) {
	var total int64
	err := u.db.Model(&entity.User{}).Count(&total).Error
	return total, err
}

func (u *DefaultUserRepository) CountActive() (int64, error) {
	var total int64
	err := u.db.Model(&entity.User{}).Where("active = ?", true).Count(&total).Error
	return total, err
}

func (u *DefaultUserRepository) FindActiveIDs() ([]int64, error) {
	var ids []int64
	err := u.db.Model(&entity.User{}).
		Where("active = ?", true).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FindAllWithNotifications lists every user, newest first.
func (u *DefaultUserRepository) FindAllWithNotifications() ([]*UserWithNotifications, error) {
	var users []*UserWithNotifications
	err := u.db.Raw(`
		SELECT u.*,
			(SELECT COUNT(*) FROM notifications n WHERE n.user_id = u.id) AS total_notifications
		FROM users u
		ORDER BY u.id DESC`).
		Scan(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (u *DefaultUserRepository) TouchLastActive(id, at int64) error {
	return u.db.Model(&entity.User{}).
		Where("id = ?", id).
		Update("last_active_at", at).Error
}

func (u *DefaultUserRepository) UpdateActive(id int64, active bool) error {
	return u.db.Model(&entity.User{}).
		Where("id = ?", id).
		Update("active", active).Error
}

func (u *DefaultUserRepository) UpdateRole(id int64, role entity.Role) error {
	return u.db.Model(&entity.User{}).
		Where("id = ?", id).
		Update("role", role).Error
}

func (u *DefaultUserRepository) Save(user *entity.User) error {
	return u.db.Save(user).Error
}

// DeleteCascade removes the user together with its events, notifications and logs.
func (u *DefaultUserRepository) DeleteCascade(id int64) error {
	return u.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&entity.Notification{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&entity.Event{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&entity.SystemLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.User{}, id).Error
	})
}
