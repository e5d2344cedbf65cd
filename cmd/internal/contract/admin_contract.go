package contract

type AdminStats struct {
	TotalUsers   int64   `json:"totalUsers"`
	EventsToday  int64   `json:"eventsToday"`
	QueueDepth   int64   `json:"queueDepth"`
	SystemHealth float64 `json:"systemHealth"`
}

type AdminUserResponse struct {
	ID                     int64   `json:"id"`
	Name                   string  `json:"name"`
	Email                  string  `json:"email"`
	Role                   string  `json:"role"`
	IsActive               bool    `json:"isActive"`
	CreatedAt              string  `json:"createdAt"`
	LastActive             *string `json:"lastActive"`
	TotalNotificationsSent int64   `json:"totalNotificationsSent"`
}

type SuspendRequest struct {
	Suspended bool `json:"suspended"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"role"`
}

type LogResponse struct {
	ID        int64  `json:"id"`
	UserID    *int64 `json:"userId"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

type LogExportResponse struct {
	Key     string `json:"key"`
	Entries int    `json:"entries"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
