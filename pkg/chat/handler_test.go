package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type mockStore struct {
	saveCalls []struct {
		sender   string
		receiver string
		content  string
	}
	saveErr error
	markErr error
	history []Message
}

func (m *mockStore) SaveMessage(ctx context.Context, senderUUID, receiverUUID, content string) (Message, error) {
	m.saveCalls = append(m.saveCalls, struct {
		sender   string
		receiver string
		content  string
	}{senderUUID, receiverUUID, content})
	if m.saveErr != nil {
		return Message{}, m.saveErr
	}
	return Message{
		ID:           int64(len(m.saveCalls)),
		SenderUUID:   senderUUID,
		ReceiverUUID: receiverUUID,
		Content:      content,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (m *mockStore) MarkMessagesRead(ctx context.Context, readerUUID string, messageIDs []int64) ([]string, error) {
	if m.markErr != nil {
		return nil, m.markErr
	}
	return []string{"sender-online"}, nil
}

func (m *mockStore) ConversationHistory(ctx context.Context, profileUUID, peerUUID string, limit int, before time.Time) ([]Message, error) {
	return m.history, nil
}

func TestValidateInbound(t *testing.T) {
	tests := []struct {
		name    string
		in      inbound
		sender  string
		wantErr bool
	}{
		{"empty content", inbound{ReceiverUUID: "peer", Content: ""}, "me", true},
		{"self message", inbound{ReceiverUUID: "me", Content: "hi"}, "me", true},
		{"missing receiver", inbound{ReceiverUUID: "", Content: "hi"}, "me", true},
		{"valid message", inbound{ReceiverUUID: "peer", Content: "hi"}, "me", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInbound(tt.in, tt.sender)
			require.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestProcessMessage_OfflineAck(t *testing.T) {
	manager := NewConnectionManager()
	store := &mockStore{}
	handler := NewHandler(manager, store)

	client := &Client{ProfileUUID: "me", Send: make(chan interface{}, 1), Done: make(chan struct{})}

	handler.processMessage(client, inbound{ReceiverUUID: "offline", Content: "hi"})

	select {
	case raw := <-client.Send:
		a, ok := raw.(ack)
		require.True(t, ok)
		require.Equal(t, "queued", a.Status)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for ack")
	}
	require.Len(t, store.saveCalls, 1)
}

func TestProcessMessage_OnlineDelivered(t *testing.T) {
	manager := NewConnectionManager()
	receiver := manager.Register("peer", nil)
	receiver.Send = make(chan interface{}, 1)
	store := &mockStore{}
	handler := NewHandler(manager, store)

	client := &Client{ProfileUUID: "me", Send: make(chan interface{}, 1), Done: make(chan struct{})}

	handler.processMessage(client, inbound{ReceiverUUID: "peer", Content: "hi"})

	select {
	case raw := <-client.Send:
		a := raw.(ack)
		require.Equal(t, "sent", a.Status)
	case <-time.After(1 * time.Second):
		t.Fatal("no ack")
	}

	select {
	case raw := <-receiver.Send:
		msg := raw.(Message)
		require.Equal(t, "hi", msg.Content)
		require.Equal(t, "me", msg.SenderUUID)
	case <-time.After(1 * time.Second):
		t.Fatal("no forwarded message")
	}

	require.Len(t, store.saveCalls, 1)
}

func TestProcessMessage_SaveErrorStopsForwarding(t *testing.T) {
	manager := NewConnectionManager()
	receiver := manager.Register("peer", nil)
	receiver.Send = make(chan interface{}, 1)
	store := &mockStore{saveErr: errors.New("db down")}
	handler := NewHandler(manager, store)

	client := &Client{ProfileUUID: "me", Send: make(chan interface{}, 1), Done: make(chan struct{})}

	handler.processMessage(client, inbound{ReceiverUUID: "peer", Content: "hi"})

	select {
	case raw := <-client.Send:
		_, ok := raw.(socketError)
		require.True(t, ok)
	case <-time.After(1 * time.Second):
		t.Fatal("no error response")
	}

	select {
	case <-receiver.Send:
		t.Fatal("should not forward on save error")
	default:
	}
}

func TestProcessMessage_SelfMessageRejected(t *testing.T) {
	manager := NewConnectionManager()
	store := &mockStore{}
	handler := NewHandler(manager, store)

	client := &Client{ProfileUUID: "me", Send: make(chan interface{}, 1), Done: make(chan struct{})}

	handler.processMessage(client, inbound{ReceiverUUID: "me", Content: "self"})

	select {
	case raw := <-client.Send:
		_, ok := raw.(socketError)
		require.True(t, ok)
	case <-time.After(1 * time.Second):
		t.Fatal("no error response")
	}
	require.Empty(t, store.saveCalls)
}

func TestProcessReadReceipt_NotifiesOnlineSender(t *testing.T) {
	manager := NewConnectionManager()
	sender := manager.Register("sender-online", nil)
	sender.Send = make(chan interface{}, 1)
	store := &mockStore{}
	handler := NewHandler(manager, store)

	client := &Client{ProfileUUID: "reader", Send: make(chan interface{}, 1), Done: make(chan struct{})}

	handler.processReadReceipt(client, inbound{Event: "read", MessageIDs: []int64{4, 5}})

	select {
	case raw := <-sender.Send:
		n := raw.(readNotification)
		require.Equal(t, []int64{4, 5}, n.MessageIDs)
		require.Equal(t, "reader", n.ReadBy)
	case <-time.After(1 * time.Second):
		t.Fatal("no read notification")
	}
}

func TestConnectionManager_Presence(t *testing.T) {
	manager := NewConnectionManager()
	require.False(t, manager.IsOnline("me"))

	manager.Register("me", nil)
	require.True(t, manager.IsOnline("me"))
	require.Equal(t, []string{"me"}, manager.OnlineProfiles())

	manager.Unregister("me")
	require.False(t, manager.IsOnline("me"))
}
