package events

import "notifyflow/cmd/internal/contract"

type SocketEvent interface {
	GetType() contract.EventType
}

type Ack struct{}

func (*Ack) GetType() contract.EventType {
	return contract.EventAck
}

type ConnectionKill struct {
	Code   contract.KillCode `json:"code"`
	Reason *string           `json:"reason,omitempty"`
}

func (e *ConnectionKill) GetType() contract.EventType {
	return contract.EventConnectionKill
}

type SessionExpired struct{}

func (*SessionExpired) GetType() contract.EventType {
	return contract.EventSessionExpired
}

// PresenceUpdate carries a full snapshot; clients replace their roster with it.
type PresenceUpdate struct {
	*contract.PresenceSnapshot
}

func (e *PresenceUpdate) GetType() contract.EventType {
	return contract.EventPresenceUpdate
}
