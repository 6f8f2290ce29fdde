package ws

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
)

// ClientEvent is an inbound event read from a connection. Type selects which
// fields are meaningful.
type ClientEvent struct {
	Type       string `json:"type"`
	ReceiverID int    `json:"receiverId"`
	Message    string `json:"message"`
	IsTyping   bool   `json:"isTyping"`
}

// Inbound event types.
const (
	eventSendMessage = "sendMessage"
	eventTyping      = "typing"
)

func (g *Gateway) dispatch(ctx context.Context, client *Client, payload []byte) {
	var evt ClientEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		client.Enqueue(marshalEvent(models.ErrorEvent{Type: models.EventError, Error: "malformed event"}))
		return
	}

	switch evt.Type {
	case eventSendMessage:
		g.handleSendMessage(ctx, client, evt)
	case eventTyping:
		g.handleTyping(client, evt)
	default:
		client.Enqueue(marshalEvent(models.ErrorEvent{Type: models.EventError, Error: "unknown event type"}))
	}
}

// handleSendMessage persists the message, then pushes it to the receiver if
// online and acknowledges it to the sender. The store write always happens
// before any push; a failed write produces no pushes at all.
func (g *Gateway) handleSendMessage(ctx context.Context, sender *Client, evt ClientEvent) {
	body := strings.TrimSpace(evt.Message)
	if body == "" {
		sender.Enqueue(marshalEvent(models.ErrorEvent{Type: models.EventError, Error: "message cannot be empty"}))
		return
	}
	if evt.ReceiverID <= 0 {
		sender.Enqueue(marshalEvent(models.ErrorEvent{Type: models.EventError, Error: "invalid receiver"}))
		return
	}

	msg, err := g.messages.CreateMessage(ctx, sender.userID, evt.ReceiverID, body)
	if err != nil {
		log.Printf("store message failed sender=%d receiver=%d: %v", sender.userID, evt.ReceiverID, err)
		sender.Enqueue(marshalEvent(models.ErrorEvent{Type: models.EventError, Error: "failed to send message"}))
		return
	}
	observability.IncMessagePersisted()

	view := g.enrich(ctx, msg)

	if receiver, ok := g.registry.Lookup(msg.ReceiverID); ok {
		receiver.Enqueue(marshalEvent(models.MessageEvent{Type: models.EventReceiveMessage, Message: &view}))
		observability.IncMessageDelivered()
	}

	sender.Enqueue(marshalEvent(models.MessageEvent{Type: models.EventMessageSent, Message: &view}))
}

// handleTyping relays a typing indicator to the recipient when online.
// Nothing is persisted and an offline recipient simply misses the event.
func (g *Gateway) handleTyping(sender *Client, evt ClientEvent) {
	receiver, ok := g.registry.Lookup(evt.ReceiverID)
	if !ok {
		return
	}
	receiver.Enqueue(marshalEvent(models.TypingEvent{
		Type:     models.EventUserTyping,
		UserID:   sender.userID,
		IsTyping: evt.IsTyping,
	}))
}

// broadcastPresence pushes the current online snapshot to every live
// connection. The payload is marshalled once and enqueued without waiting on
// any individual peer.
func (g *Gateway) broadcastPresence() {
	ids := g.registry.OnlineUserIDs()
	sort.Ints(ids)
	payload := marshalEvent(models.PresenceEvent{Type: models.EventOnlineUsers, OnlineUsers: ids})
	for _, client := range g.registry.Clients() {
		client.Enqueue(payload)
	}
}

// enrich resolves sender and receiver display attributes. Profile lookup is a
// best-effort read: on failure the message is still delivered, just without
// the profile fields.
func (g *Gateway) enrich(ctx context.Context, msg models.Message) models.MessageView {
	view := models.MessageView{Message: msg}

	users, err := g.users.GetUsersByIDs(ctx, []int{msg.SenderID, msg.ReceiverID})
	if err != nil {
		log.Printf("profile lookup failed: %v", err)
		return view
	}
	for _, u := range users {
		uv := u.View()
		switch u.ID {
		case msg.SenderID:
			view.Sender = &uv
		case msg.ReceiverID:
			view.Receiver = &uv
		}
	}
	return view
}

func marshalEvent(event interface{}) []byte {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("marshal event failed: %v", err)
	}
	return payload
}
