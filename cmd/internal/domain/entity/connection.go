package entity

// Connection is one live push connection, joined to presence or not.
// Rows only describe the current process and are purged at startup.
type Connection struct {
	ConnectionID    string `gorm:"primaryKey;autoIncrement:false"`
	LastHeartbeatAt int64  `gorm:"not null;index"`
	CreatedAt       int64  `gorm:"not null"`
}
