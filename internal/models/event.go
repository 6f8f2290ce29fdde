package models

// Websocket event types pushed to clients.
const (
	EventReceiveMessage = "receiveMessage"
	EventMessageSent    = "messageSent"
	EventUserTyping     = "userTyping"
	EventOnlineUsers    = "onlineUsers"
	EventError          = "error"
)

// MessageEvent carries a delivered message or a sender acknowledgement.
type MessageEvent struct {
	Type    string       `json:"type"`
	Message *MessageView `json:"message"`
}

// TypingEvent relays a typing indicator to the recipient.
type TypingEvent struct {
	Type     string `json:"type"`
	UserID   int    `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// PresenceEvent carries the full snapshot of online user ids.
type PresenceEvent struct {
	Type        string `json:"type"`
	OnlineUsers []int  `json:"onlineUsers"`
}

// ErrorEvent notifies the sending client that an inbound event was rejected.
type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
