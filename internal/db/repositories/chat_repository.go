package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
)

// ChatRepository handles chat message database operations
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create stores a new chat message
func (r *ChatRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now()

	query := `
		INSERT INTO chat_messages (id, company_id, channel, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.CompanyID, msg.Channel, msg.UserID, msg.Body, msg.CreatedAt)
	return err
}

// ListByChannel retrieves the most recent messages in a channel, newest first
func (r *ChatRepository) ListByChannel(ctx context.Context, companyID, channel string, limit int) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, company_id, channel, user_id, body, created_at
		FROM chat_messages
		WHERE company_id = $1 AND channel = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	msgs := []*models.ChatMessage{}
	if err := r.db.SelectContext(ctx, &msgs, query, companyID, channel, limit); err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListChannels retrieves the distinct channel names used by a company
func (r *ChatRepository) ListChannels(ctx context.Context, companyID string) ([]string, error) {
	query := `
		SELECT DISTINCT channel
		FROM chat_messages
		WHERE company_id = $1
		ORDER BY channel
	`

	channels := []string{}
	if err := r.db.SelectContext(ctx, &channels, query, companyID); err != nil {
		return nil, err
	}
	return channels, nil
}
