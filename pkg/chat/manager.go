package chat

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one collector's live socket.
type Client struct {
	ProfileUUID string
	Conn        *websocket.Conn
	Send        chan interface{}
	Done        chan struct{}
}

// ConnectionManager tracks the sockets currently connected, one per profile.
type ConnectionManager struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{clients: make(map[string]*Client)}
}

// Register attaches a new socket for the profile. A previous socket for the
// same profile is closed first so each collector has at most one connection.
func (cm *ConnectionManager) Register(profileUUID string, conn *websocket.Conn) *Client {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if existing, ok := cm.clients[profileUUID]; ok {
		close(existing.Done)
		existing.Conn.Close()
	}

	client := &Client{
		ProfileUUID: profileUUID,
		Conn:        conn,
		Send:        make(chan interface{}, 32),
		Done:        make(chan struct{}),
	}
	cm.clients[profileUUID] = client
	return client
}

func (cm *ConnectionManager) Unregister(profileUUID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if client, ok := cm.clients[profileUUID]; ok {
		close(client.Done)
		delete(cm.clients, profileUUID)
	}
}

func (cm *ConnectionManager) IsOnline(profileUUID string) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	_, ok := cm.clients[profileUUID]
	return ok
}

func (cm *ConnectionManager) OnlineProfiles() []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	profiles := make([]string, 0, len(cm.clients))
	for uuid := range cm.clients {
		profiles = append(profiles, uuid)
	}
	return profiles
}

// Push queues a payload for the given profile's socket.
func (cm *ConnectionManager) Push(profileUUID string, payload interface{}) error {
	cm.mu.RLock()
	client, ok := cm.clients[profileUUID]
	cm.mu.RUnlock()

	if !ok {
		return fmt.Errorf("profile %s is not online", profileUUID)
	}

	select {
	case client.Send <- payload:
		return nil
	case <-client.Done:
		return fmt.Errorf("profile %s disconnected", profileUUID)
	default:
		return fmt.Errorf("profile %s message queue full", profileUUID)
	}
}
