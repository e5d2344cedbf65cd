package service

import (
	"fmt"
	"math"
	"math/rand"
	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/utils"
	"notifyflow/cmd/internal/utils/apierror"
	"sync"

	"github.com/labstack/gommon/log"
)

const (
	statusOperational = "operational"
	statusDegraded    = "degraded"

	// The public status only drifts once per interval
	statusDriftMillis = int64(30 * 1000)

	minUptime, maxUptime   = 98.9, 99.99
	degradedBelow          = 99.2
	minLatency, maxLatency = 35, 180
	minRate, maxRate       = 100, 320

	workerCount = 4
)

// SystemService simulates the platform status shown on the landing page and
// the worker fleet shown on the dashboard.
type SystemService struct {
	EventRepo        EventRepository
	NotificationRepo NotificationRepository

	mu        sync.Mutex
	status    contract.SystemStatus
	updatedAt int64
	clock     func() int64
	intn      func(n int) int
}

func NewSystemService(region string, eventRepo EventRepository, notificationRepo NotificationRepository) *SystemService {
	return &SystemService{
		EventRepo:        eventRepo,
		NotificationRepo: notificationRepo,
		status: contract.SystemStatus{
			Status:              statusOperational,
			Uptime:              99.3,
			Region:              region,
			LatencyMs:           82,
			EventProcessingRate: 180,
		},
		updatedAt: utils.NowUTC(),
		clock:     utils.NowUTC,
		intn:      rand.Intn,
	}
}

// GetStatus returns the current status, letting it drift when the last change
// is at least 30 seconds old.
func (s *SystemService) GetStatus() *contract.SystemStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if now-s.updatedAt >= statusDriftMillis {
		s.drift()
		s.updatedAt = now
	}

	status := s.status
	return &status
}

// Uptime is the current simulated uptime, rounded to two decimals.
func (s *SystemService) Uptime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return round2(s.status.Uptime)
}

func (s *SystemService) drift() {
	// +-0.03 in steps of 0.01
	delta := float64(s.intn(7)-3) / 100
	s.status.Uptime = clampFloat(round2(s.status.Uptime+delta), minUptime, maxUptime)
	s.status.LatencyMs = clampInt(s.status.LatencyMs+s.intn(9)-4, minLatency, maxLatency)
	s.status.EventProcessingRate = clampInt(s.status.EventProcessingRate+s.intn(17)-8, minRate, maxRate)

	if s.status.Uptime >= degradedBelow {
		s.status.Status = statusOperational
	} else {
		s.status.Status = statusDegraded
	}
}

// GetWorkers spreads the caller's pending work over the simulated workers.
func (s *SystemService) GetWorkers(actor *entity.User) ([]*contract.WorkerResponse, apierror.ErrorResponse) {
	today := utils.StartOfDayUTC(utils.NowUTC())

	queued, err := s.NotificationRepo.CountByUserInStatuses(actor.ID, entity.StatusQueued)
	if err != nil {
		log.Errorf("failed to count queued notifications of user %d: %v", actor.ID, err)
		return nil, apierror.NewUnavailableError("load worker instances")
	}

	processing, err := s.NotificationRepo.CountByUserInStatuses(actor.ID, entity.StatusProcessing)
	if err != nil {
		log.Errorf("failed to count processing notifications of user %d: %v", actor.ID, err)
		return nil, apierror.NewUnavailableError("load worker instances")
	}

	notificationsToday, err := s.NotificationRepo.CountByUserSince(actor.ID, today)
	if err != nil {
		log.Errorf("failed to count today's notifications of user %d: %v", actor.ID, err)
		return nil, apierror.NewUnavailableError("load worker instances")
	}

	eventsToday, err := s.EventRepo.CountByUserSince(actor.ID, today)
	if err != nil {
		log.Errorf("failed to count today's events of user %d: %v", actor.ID, err)
		return nil, apierror.NewUnavailableError("load worker instances")
	}

	return distributeJobs(queued + processing + (notificationsToday+eventsToday)/4), nil
}

// distributeJobs splits pool as evenly as possible, later workers absorb the remainder.
func distributeJobs(pool int64) []*contract.WorkerResponse {
	workers := make([]*contract.WorkerResponse, workerCount)
	for i := 0; i < workerCount; i++ {
		jobs := pool / int64(workerCount-i)
		pool -= jobs

		w := &contract.WorkerResponse{
			Name:   fmt.Sprintf("Worker-0%d", i+1),
			Status: "Idle",
			Detail: "Standby",
		}
		if jobs > 0 {
			w.Status = "Active"
			w.Detail = fmt.Sprintf("Processing: %d jobs", jobs)
		}
		workers[i] = w
	}
	return workers
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func clampInt(v, lo, hi int) int {
	return min(hi, max(lo, v))
}
