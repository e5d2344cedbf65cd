package entity

import "strings"

// Role is the coarse permission level of a dashboard account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// IsAdmin compares case-insensitively, older rows may carry "Admin".
func (r Role) IsAdmin() bool {
	return strings.EqualFold(string(r), string(RoleAdmin))
}

// User is the general basic structure of all users across the platform
type User struct {
	ID           int64  `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"not null;uniqueIndex"`
	Role         Role   `gorm:"not null;default:user"`
	Active       bool   `gorm:"not null"`
	PasswordHash string `gorm:"not null"`
	LastActiveAt int64
	CreatedAt    int64 `gorm:"not null;autoCreateTime:milli"`
}

// EffectiveRole falls back to RoleUser for rows created before roles existed.
func (u *User) EffectiveRole() Role {
	if u.Role == "" {
		return RoleUser
	}
	return u.Role
}
