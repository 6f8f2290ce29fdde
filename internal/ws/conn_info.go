package ws

import "time"

// ConnInfo records handshake metadata for a websocket connection, used for
// lifecycle events and audit.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
