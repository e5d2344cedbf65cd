package entity

// Event is one simulated or user-triggered platform event.
type Event struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    int64  `gorm:"not null;index"`
	Type      string `gorm:"not null"`
	Message   string `gorm:"not null"`
	IsDemo    bool   `gorm:"not null"`
	CreatedAt int64  `gorm:"not null;index;autoCreateTime:milli"`
}
