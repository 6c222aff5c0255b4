package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageStore interface {
	SaveMessage(ctx context.Context, senderUUID, receiverUUID, content string) (Message, error)
	MarkMessagesRead(ctx context.Context, readerUUID string, messageIDs []int64) ([]string, error)
	ConversationHistory(ctx context.Context, profileUUID, peerUUID string, limit int, before time.Time) ([]Message, error)
}

type PostgresMessageStore struct {
	pool *pgxpool.Pool
}

func NewPostgresMessageStore(pool *pgxpool.Pool) *PostgresMessageStore {
	return &PostgresMessageStore{pool: pool}
}

func (r *PostgresMessageStore) SaveMessage(ctx context.Context, senderUUID, receiverUUID, content string) (Message, error) {
	const query = `
		INSERT INTO messages (sender_uuid, receiver_uuid, content)
		VALUES ($1, $2, $3)
		RETURNING id, sender_uuid, receiver_uuid, content, is_read, created_at`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var m Message
	err := r.pool.QueryRow(ctx, query, senderUUID, receiverUUID, content).
		Scan(&m.ID, &m.SenderUUID, &m.ReceiverUUID, &m.Content, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

// MarkMessagesRead flips is_read on messages addressed to the reader and
// returns the distinct sender UUIDs whose messages were affected.
func (r *PostgresMessageStore) MarkMessagesRead(ctx context.Context, readerUUID string, messageIDs []int64) ([]string, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}

	const query = `
		UPDATE messages
		SET is_read = TRUE
		WHERE receiver_uuid = $1
		  AND id = ANY($2)
		  AND is_read = FALSE
		RETURNING sender_uuid`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, readerUUID, messageIDs)
	if err != nil {
		return nil, fmt.Errorf("mark messages read: %w", err)
	}
	defer rows.Close()

	senders := make([]string, 0)
	seen := make(map[string]bool)
	for rows.Next() {
		var sender string
		if err := rows.Scan(&sender); err != nil {
			return nil, fmt.Errorf("scan sender uuid: %w", err)
		}
		if !seen[sender] {
			senders = append(senders, sender)
			seen[sender] = true
		}
	}
	return senders, rows.Err()
}

// ConversationHistory returns up to limit messages between the two profiles
// created before the cursor, oldest first.
func (r *PostgresMessageStore) ConversationHistory(ctx context.Context, profileUUID, peerUUID string, limit int, before time.Time) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	const query = `
		SELECT id, sender_uuid, receiver_uuid, content, is_read, created_at
		FROM messages
		WHERE ((sender_uuid = $1 AND receiver_uuid = $2)
		    OR (sender_uuid = $2 AND receiver_uuid = $1))
		  AND created_at < $3
		ORDER BY created_at ASC
		LIMIT $4`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, profileUUID, peerUUID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversation history: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderUUID, &m.ReceiverUUID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
