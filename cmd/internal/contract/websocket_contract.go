package contract

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type EventType string

const (
	EventPing EventType = "ping"

	EventConnectionKill EventType = "CONNECTION_KILL"
	EventSessionExpired EventType = "SESSION_EXPIRED"
	EventAck            EventType = "ACK"

	EventPresenceJoin   EventType = "presence:join"
	EventPresenceUpdate EventType = "presence:update"
)

type KillCode string

const (
	KillCodeSuspended KillCode = "ACCOUNT_SUSPENDED"
	KillCodeDeleted   KillCode = "ACCOUNT_DELETED"
)

// IncomingSocketMessage is used for messages we receive from the users.
type IncomingSocketMessage struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// OutgoingSocketMessage is what we send to the Client
type OutgoingSocketMessage struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// PresenceJoinRequest is the payload of a presence:join message.
type PresenceJoinRequest struct {
	UserID FlexibleID `json:"userId"`
}

// FlexibleID accepts either a JSON number or a numeric string. Anything
// else decodes to 0, which never resolves to a user.
type FlexibleID int64

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	*f = 0
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	}

	if id, err := strconv.ParseInt(text, 10, 64); err == nil {
		*f = FlexibleID(id)
		return nil
	}

	// JSON numbers such as 3.0 are still accepted when integral
	if fl, err := strconv.ParseFloat(text, 64); err == nil && fl == float64(int64(fl)) {
		*f = FlexibleID(int64(fl))
	}
	return nil
}
