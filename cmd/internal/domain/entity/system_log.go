package entity

const (
	LevelInfo = "info"
	LevelWarn = "warn"

	CategoryAuth           = "auth"
	CategoryEvent          = "event"
	CategoryBroadcast      = "broadcast"
	CategoryAdmin          = "admin"
	CategoryAdminBroadcast = "admin-broadcast"
	CategorySeed           = "seed"
)

// SystemLog is an audit trail row. UserID is nil for system-originated entries.
type SystemLog struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    *int64 `gorm:"index"`
	Level     string `gorm:"not null"`
	Category  string `gorm:"not null"`
	Message   string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:milli"`
}
