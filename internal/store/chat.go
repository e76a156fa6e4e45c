package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/relaychat/apiserver/types"
)

// ChatRepository handles persistence for chats.
type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) ListByWorkspace(ctx context.Context, wsID int64) ([]types.Chat, error) {
	const query = `
		SELECT id, ws_id, COALESCE(name, ''), type, members, created_at
		FROM chats
		WHERE ws_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, wsID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := make([]types.Chat, 0)
	for rows.Next() {
		var chat types.Chat
		var members pq.Int64Array
		if err := rows.Scan(
			&chat.ID,
			&chat.WsID,
			&chat.Name,
			&chat.Type,
			&members,
			&chat.CreatedAt,
		); err != nil {
			return nil, err
		}
		chat.Members = members
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

func (r *ChatRepository) GetByID(ctx context.Context, id int64) (types.Chat, error) {
	const query = `
		SELECT id, ws_id, COALESCE(name, ''), type, members, created_at
		FROM chats
		WHERE id = $1`
	var chat types.Chat
	var members pq.Int64Array
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&chat.ID,
		&chat.WsID,
		&chat.Name,
		&chat.Type,
		&members,
		&chat.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Chat{}, ErrNotFound
		}
		return types.Chat{}, err
	}
	chat.Members = members
	return chat, nil
}

func (r *ChatRepository) Create(ctx context.Context, chat types.Chat) (types.Chat, error) {
	const query = `
		INSERT INTO chats (ws_id, name, type, members)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		chat.WsID,
		chat.Name,
		chat.Type,
		pq.Int64Array(chat.Members),
	).Scan(&chat.ID, &chat.CreatedAt)
	if err != nil {
		return types.Chat{}, err
	}
	return chat, nil
}

func (r *ChatRepository) Update(ctx context.Context, chat types.Chat) (types.Chat, error) {
	const query = `
		UPDATE chats
		SET name = NULLIF($1, ''),
			type = $2,
			members = $3
		WHERE id = $4 AND ws_id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		chat.Name,
		chat.Type,
		pq.Int64Array(chat.Members),
		chat.ID,
		chat.WsID,
	)
	if err != nil {
		return types.Chat{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Chat{}, err
	}
	if affected == 0 {
		return types.Chat{}, ErrNotFound
	}
	return chat, nil
}

func (r *ChatRepository) Delete(ctx context.Context, id, wsID int64) error {
	const query = `DELETE FROM chats WHERE id = $1 AND ws_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, wsID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
