package service

import (
	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/utils"
	"notifyflow/cmd/internal/utils/apierror"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	demoMode      = "demo"
	demoUserEmail = "demo@notifyflow.com"
	demoUserName  = "Demo Admin"
)

type demoSession struct {
	session   *contract.DemoSession
	createdAt int64
}

// DemoService keeps throwaway sessions for visitors trying the dashboard.
// Sessions live in memory only and never reach the database.
type DemoService struct {
	mu       sync.Mutex
	sessions map[string]*demoSession
	clock    func() int64
}

func NewDemoService() *DemoService {
	return &DemoService{
		sessions: make(map[string]*demoSession),
		clock:    utils.NowUTC,
	}
}

func (d *DemoService) Start() *contract.DemoSession {
	id := uuid.NewString()
	now := d.clock()
	session := &contract.DemoSession{
		ID:   id,
		Mode: demoMode,
		User: &contract.DemoUser{
			ID:    id,
			Email: demoUserEmail,
			Name:  demoUserName,
			Role:  "admin",
		},
		CreatedAt:     utils.FormatISO(now),
		Logs:          []interface{}{},
		Notifications: []interface{}{},
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[id] = &demoSession{session: session, createdAt: now}
	return session
}

// Logout forgets the session. Unknown ids are not an error.
func (d *DemoService) Logout(req *contract.DemoLogoutRequest) apierror.ErrorResponse {
	id := strings.TrimSpace(req.SessionID)
	if id == "" {
		return apierror.SessionIDRequiredError
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, id)
	return nil
}

func (d *DemoService) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// PurgeOlderThan drops sessions created more than ttlMillis ago and returns how many.
func (d *DemoService) PurgeOlderThan(ttlMillis int64) int {
	cutoff := d.clock() - ttlMillis

	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for id, s := range d.sessions {
		if s.createdAt < cutoff {
			delete(d.sessions, id)
			removed++
		}
	}
	return removed
}
