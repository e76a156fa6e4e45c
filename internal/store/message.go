package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/relaychat/apiserver/types"
)

// MessageRepository handles persistence for chat messages.
type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg types.Message) (types.Message, error) {
	const query = `
		INSERT INTO messages (chat_id, sender_id, content, files)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		msg.ChatID,
		msg.SenderID,
		msg.Content,
		pq.Array(msg.Files),
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return types.Message{}, err
	}
	return msg, nil
}

// ListByChat pages through a chat's messages newest first. lastID is
// an exclusive upper cursor; zero means start from the latest message.
func (r *MessageRepository) ListByChat(ctx context.Context, chatID, lastID int64, limit int) ([]types.Message, error) {
	if limit < 1 {
		limit = 20
	}
	cursor := lastID
	if cursor <= 0 {
		cursor = maxCursor
	}

	const query = `
		SELECT id, chat_id, sender_id, content, files, created_at
		FROM messages
		WHERE chat_id = $1 AND id < $2
		ORDER BY id DESC
		LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, chatID, cursor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]types.Message, 0, limit)
	for rows.Next() {
		var msg types.Message
		var files pq.StringArray
		if err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.SenderID,
			&msg.Content,
			&files,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		msg.Files = files
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

const maxCursor = int64(1)<<62 - 1
