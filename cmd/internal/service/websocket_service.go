package service

import (
	"context"
	"encoding/json"
	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/domain/events"
	"notifyflow/cmd/internal/metrics"
	"notifyflow/cmd/internal/utils"
	"notifyflow/cmd/internal/utils/apierror"
	"time"

	"github.com/labstack/gommon/log"
)

// killGrace is how long a terminated connection gets to read its CONNECTION_KILL.
var killGrace = 200 * time.Millisecond

type ConnectionRepository interface {
	Save(conn *entity.Connection) error
	Delete(connID string) (bool, error)
	Exists(connID string) (bool, error)
	DeleteAll() error
	FindAll() ([]string, error)
	FindStale(before int64) ([]string, error)
	UpdateHeartbeat(connID string, now int64) error
}

// PushGateway delivers messages to individual connections. It is implemented
// by the in-process websocket hub and by the API Gateway management client.
type PushGateway interface {
	PostToConnection(ctx context.Context, connID string, data interface{}) error
	DeleteConnection(ctx context.Context, connID string) error
}

type PresenceTracker interface {
	Join(ctx context.Context, connID string, claimedUserID int64) bool
	Leave(ctx context.Context, connID string) bool
	ConnectionsOf(ctx context.Context, userID int64) ([]string, error)
}

type WebSocketService struct {
	ConnRepo ConnectionRepository
	Gateway  PushGateway
	Presence PresenceTracker

	// latest holds the newest snapshot not yet dispatched
	latest chan *contract.PresenceSnapshot
}

func NewWebSocketService(repo ConnectionRepository, gateway PushGateway) *WebSocketService {
	return &WebSocketService{
		ConnRepo: repo,
		Gateway:  gateway,
		latest:   make(chan *contract.PresenceSnapshot, 1),
	}
}

// SetPresence wires the tracker, which itself needs the service as its broadcaster.
func (s *WebSocketService) SetPresence(tracker PresenceTracker) {
	s.Presence = tracker
}

// PurgeConnections drops registry rows left behind by a previous process.
func (s *WebSocketService) PurgeConnections() error {
	return s.ConnRepo.DeleteAll()
}

func (s *WebSocketService) RegisterConnection(connectionID string) apierror.ErrorResponse {
	now := utils.NowUTC()
	conn := &entity.Connection{
		ConnectionID:    connectionID,
		LastHeartbeatAt: now, // Avoid users getting disconnected immediately
		CreatedAt:       now,
	}

	if err := s.ConnRepo.Save(conn); err != nil {
		log.Errorf("failed to save connection %s: %v", connectionID, err)
		return apierror.InternalServerError
	}

	metrics.ConnectionsTotal.Inc()
	metrics.LiveConnections.Inc()
	return nil
}

// RemoveConnection forgets connectionID everywhere. Calling it twice is harmless.
func (s *WebSocketService) RemoveConnection(ctx context.Context, connectionID string) {
	// We don't return error here because if it fails, it's not the client's fault
	deleted, err := s.ConnRepo.Delete(connectionID)
	if err != nil {
		log.Errorf("failed to delete connection %s: %v", connectionID, err)
	}

	if deleted {
		metrics.LiveConnections.Dec()
	}

	if s.Presence != nil {
		s.Presence.Leave(ctx, connectionID)
	}
}

// HandleRaw decodes one frame received from connID and handles it. Frames that
// are not valid JSON envelopes are ignored.
func (s *WebSocketService) HandleRaw(ctx context.Context, connID string, data []byte) {
	var msg contract.IncomingSocketMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Debugf("ignoring malformed frame from %s: %v", connID, err)
		return
	}
	s.HandleMessage(ctx, &msg, connID)
}

func (s *WebSocketService) HandleMessage(ctx context.Context, msg *contract.IncomingSocketMessage, connID string) {
	switch msg.Type {
	case contract.EventPing:
		s.handlePing(ctx, connID)
	case contract.EventPresenceJoin:
		s.handleJoin(ctx, connID, msg.Data)
	default:
		log.Debugf("ignoring %q frame from %s", msg.Type, connID)
	}
}

// TerminateUserConnections sends a "poison pill" message and then disconnects
func (s *WebSocketService) TerminateUserConnections(ctx context.Context, userID int64, ck *events.ConnectionKill) {
	if s.Presence == nil {
		return
	}

	conns, err := s.Presence.ConnectionsOf(ctx, userID)
	if err != nil {
		log.Errorf("failed to fetch connections for user %d: %v", userID, err)
		return
	}

	for _, connID := range conns {
		s.DispatchToConnection(ctx, connID, ck)

		go func(cid string) {
			time.Sleep(killGrace)
			bgCtx := context.Background()
			_ = s.Gateway.DeleteConnection(bgCtx, cid)
			s.RemoveConnection(bgCtx, cid)
		}(connID)
	}
}

func (s *WebSocketService) DispatchToConnection(ctx context.Context, connID string, evt events.SocketEvent) {
	envelope := &contract.OutgoingSocketMessage{
		Type: evt.GetType(),
		Data: evt,
	}
	if err := s.Gateway.PostToConnection(ctx, connID, envelope); err != nil {
		log.Debugf("failed to post %s to %s: %v", evt.GetType(), connID, err)
	}
}

// Broadcast sends an event to ALL connected users.
// This iterates through every registered connection, joined or not.
func (s *WebSocketService) Broadcast(ctx context.Context, evt events.SocketEvent) {
	conns, err := s.ConnRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch all connections for broadcast: %v", err)
		return
	}

	// Serialize once, every connection gets the same bytes
	payload, err := json.Marshal(&contract.OutgoingSocketMessage{
		Type: evt.GetType(),
		Data: evt,
	})
	if err != nil {
		log.Errorf("failed to encode %s broadcast: %v", evt.GetType(), err)
		return
	}

	for _, connID := range conns {
		// We ignore errors here so one stale connection doesn't block others
		_ = s.Gateway.PostToConnection(ctx, connID, json.RawMessage(payload))
	}
}

// PublishPresence replaces any snapshot still waiting for dispatch. It never
// blocks, so the presence tracker is never held up by the network.
func (s *WebSocketService) PublishPresence(snapshot *contract.PresenceSnapshot) {
	select {
	case <-s.latest:
	default:
	}

	select {
	case s.latest <- snapshot:
	default:
	}
}

// StartDispatcher broadcasts published snapshots until ctx is cancelled.
func (s *WebSocketService) StartDispatcher(ctx context.Context) {
	log.Info("presence dispatcher started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping presence dispatcher...")
			return
		case snap := <-s.latest:
			s.Broadcast(ctx, &events.PresenceUpdate{PresenceSnapshot: snap})
		}
	}
}

// ExpireStale disconnects every connection whose heartbeat is older than timeout.
func (s *WebSocketService) ExpireStale(ctx context.Context, timeout time.Duration) int {
	before := utils.NowUTC() - timeout.Milliseconds()
	conns, err := s.ConnRepo.FindStale(before)
	if err != nil {
		log.Errorf("failed to fetch stale connections: %v", err)
		return 0
	}

	for _, connID := range conns {
		// Notify Client (So they know NOT to try reconnecting)
		s.DispatchToConnection(ctx, connID, &events.SessionExpired{})

		_ = s.Gateway.DeleteConnection(ctx, connID)
		s.RemoveConnection(ctx, connID)
	}
	return len(conns)
}

func (s *WebSocketService) handlePing(ctx context.Context, connID string) {
	if err := s.ConnRepo.UpdateHeartbeat(connID, utils.NowUTC()); err != nil {
		log.Errorf("failed to update heartbeat of %s: %v", connID, err)
		return
	}
	s.DispatchToConnection(ctx, connID, &events.Ack{})
}

func (s *WebSocketService) handleJoin(ctx context.Context, connID string, data json.RawMessage) {
	if s.Presence == nil {
		return
	}

	// Undecodable payloads leave UserID at 0, which never resolves
	var req contract.PresenceJoinRequest
	if len(data) > 0 {
		_ = json.Unmarshal(data, &req)
	}

	// Only live connections may count towards presence
	if !s.isRegistered(connID) {
		log.Debugf("ignoring join from unregistered connection %s", connID)
		return
	}

	if !s.Presence.Join(ctx, connID, int64(req.UserID)) {
		return
	}

	// The connection may have been removed while the join was in flight
	if !s.isRegistered(connID) {
		s.Presence.Leave(ctx, connID)
	}
}

func (s *WebSocketService) isRegistered(connID string) bool {
	ok, err := s.ConnRepo.Exists(connID)
	if err != nil {
		log.Errorf("failed to look up connection %s: %v", connID, err)
		return false
	}
	return ok
}
