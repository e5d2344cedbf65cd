package contract

type DashboardStats struct {
	ActiveUsers       int64 `json:"activeUsers"`
	EventsToday       int64 `json:"eventsToday"`
	NotificationsSent int64 `json:"notificationsSent"`
	QueueDepth        int64 `json:"queueDepth"`
	SystemHealth      int   `json:"systemHealth"`
}

type EventResponse struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

type NotificationResponse struct {
	ID        *int64 `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

type AnalyticsPoint struct {
	HourSlot string `json:"hourSlot"`
	Total    int64  `json:"total"`
}

type TriggerEventRequest struct {
	Type    string `json:"type" validate:"required,max=64"`
	Message string `json:"message" validate:"required,max=2000"`
}

type BroadcastRequest struct {
	Title   string `json:"title" validate:"required,max=120"`
	Message string `json:"message" validate:"required,max=2000"`
}

type BroadcastResponse struct {
	Notification *NotificationResponse `json:"notification,omitempty"`
	Recipients   int                   `json:"recipients"`
}

type SystemStatus struct {
	Status              string  `json:"status"`
	Uptime              float64 `json:"uptime"`
	Region              string  `json:"region"`
	LatencyMs           int     `json:"latencyMs"`
	EventProcessingRate int     `json:"eventProcessingRate"`
}

type WorkerResponse struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}
