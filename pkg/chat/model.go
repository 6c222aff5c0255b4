package chat

import "time"

// Message is a direct message between two collectors.
type Message struct {
	ID           int64     `json:"id"`
	SenderUUID   string    `json:"sender_uuid"`
	ReceiverUUID string    `json:"receiver_uuid"`
	Content      string    `json:"content"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

// inbound is the envelope clients send over the socket. Event is either
// "message" or "read".
type inbound struct {
	Event        string  `json:"event"`
	ReceiverUUID string  `json:"receiver_uuid,omitempty"`
	Content      string  `json:"content,omitempty"`
	MessageIDs   []int64 `json:"message_ids,omitempty"`
}

// ack confirms to the sender that a message was stored. Status is "sent"
// when the receiver got it live, "queued" when they were offline.
type ack struct {
	Event     string `json:"event"`
	MessageID int64  `json:"message_id"`
	Status    string `json:"status"`
}

type readNotification struct {
	Event      string  `json:"event"`
	MessageIDs []int64 `json:"message_ids"`
	ReadBy     string  `json:"read_by"`
}

type socketError struct {
	Event string `json:"event"`
	Error string `json:"error"`
}
