package contract

// PresenceSnapshot is the aggregate "who is online" view, shared by the
// presence:update broadcast and the admin poll endpoint.
type PresenceSnapshot struct {
	Count int             `json:"count"`
	Users []*PresenceUser `json:"users"`
}

type PresenceUser struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Sockets  int    `json:"sockets"`
	LastSeen string `json:"lastSeen"`
}
