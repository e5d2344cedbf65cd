package entity

const (
	NotificationTypeBroadcast = "broadcast"

	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusPending    = "pending"
	StatusDelivered  = "delivered"
)

// QueuedStatuses are the statuses counted as queue depth.
var QueuedStatuses = []string{StatusQueued, StatusProcessing, StatusPending}

type Notification struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    int64  `gorm:"not null;index"`
	Type      string `gorm:"not null"`
	Title     string `gorm:"not null"`
	Message   string `gorm:"not null"`
	Status    string `gorm:"not null;index"`
	IsDemo    bool   `gorm:"not null"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:milli"`
}
