package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messaging-service/internal/auth"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
)

// Gateway accepts realtime connections, maintains the presence registry and
// runs the delivery protocol for each authenticated client.
type Gateway struct {
	registry *Registry
	messages repositories.MessageRepository
	users    repositories.UserRepository
	verifier auth.TokenVerifier
}

// NewGateway constructs a Gateway.
func NewGateway(registry *Registry, messages repositories.MessageRepository, users repositories.UserRepository, verifier auth.TokenVerifier) *Gateway {
	return &Gateway{registry: registry, messages: messages, users: users, verifier: verifier}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates the handshake, upgrades the connection and registers
// the client. Nothing is registered until the token checks out.
func (g *Gateway) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messaging-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	userID, err := g.verifier.Verify(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}

	client := newClient(userID, conn, info)
	go client.writeLoop()

	g.registry.Register(userID, client)
	g.broadcastPresence()

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	g.publishLifecycleEvent(ctx, info, "ws_connect", "")

	// The request context is canceled once the handshake handler returns;
	// event handling runs for the life of the connection.
	go g.readLoop(context.WithoutCancel(ctx), client)
}

// readLoop processes inbound events for one connection, strictly in order.
// The registry entry is released on exit only if it still belongs to this
// connection.
func (g *Gateway) readLoop(ctx context.Context, client *Client) {
	var closeReason string
	defer func() {
		if g.registry.Unregister(client.userID, client) {
			g.broadcastPresence()
		}
		client.close()
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		g.publishLifecycleEvent(ctx, client.info, "ws_disconnect", closeReason)
	}()

	for {
		_, payload, err := client.conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				g.publishLifecycleEvent(ctx, client.info, "ws_error", closeReason)
			}
			return
		}
		g.dispatch(ctx, client, payload)
	}
}

func (g *Gateway) publishLifecycleEvent(ctx context.Context, info ConnInfo, event, reason string) {
	durationMS := int64(0)
	if event != "ws_connect" {
		durationMS = time.Since(info.ConnectedAt).Milliseconds()
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(ctx, "ws_events.messaging", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, headers)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
