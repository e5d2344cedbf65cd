package contract

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=80"`
	Email    string `json:"email" validate:"required,max=254,nospaces"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthResponse struct {
	User *UserResponse `json:"user"`
}

type DemoUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type DemoSession struct {
	ID            string        `json:"id"`
	Mode          string        `json:"mode"`
	User          *DemoUser     `json:"user"`
	CreatedAt     string        `json:"createdAt"`
	Logs          []interface{} `json:"logs"`
	Notifications []interface{} `json:"notifications"`
}

type DemoLogoutRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}
