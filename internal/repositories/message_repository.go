package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

const messageColumns = `id, sender_id, receiver_id, body, is_read, created_at`

// MessageRepository defines interactions with the durable message store.
type MessageRepository interface {
	CreateMessage(ctx context.Context, senderID int, receiverID int, body string) (models.Message, error)
	GetConversation(ctx context.Context, userID int, otherID int) ([]models.Message, error)
	ListMessagesInvolving(ctx context.Context, userID int) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, senderID int, receiverID int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage appends a direct message and returns the stored row with the
// server-assigned id and timestamp.
func (r *MessageRepo) CreateMessage(ctx context.Context, senderID int, receiverID int, body string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (sender_id, receiver_id, body) VALUES ($1, $2, $3) RETURNING `+messageColumns, senderID, receiverID, body).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Body, &msg.IsRead, &msg.CreatedAt)
	return msg, err
}

// GetConversation returns the full two-way history between two users,
// oldest first.
func (r *MessageRepo) GetConversation(ctx context.Context, userID int, otherID int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at ASC, id ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userID, otherID)
	return msgs, err
}

// ListMessagesInvolving returns every message sent or received by the user,
// newest first. Ties on created_at break on id so the ordering is stable.
func (r *MessageRepo) ListMessagesInvolving(ctx context.Context, userID int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE sender_id=$1 OR receiver_id=$1
        ORDER BY created_at DESC, id DESC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userID)
	return msgs, err
}

// MarkConversationRead flips unread messages from sender to receiver to read.
// Running it again is a no-op.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, senderID int, receiverID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE WHERE sender_id=$1 AND receiver_id=$2 AND is_read = FALSE`, senderID, receiverID)
	return err
}
