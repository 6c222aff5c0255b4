package chat

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"piximint/pkg/response"
)

const (
	maxContentLength = 10000
	pongWait         = 60 * time.Second
	pingInterval     = 30 * time.Second
	writeWait        = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the frontend origin once it is fixed in config
		return true
	},
}

type Handler struct {
	manager *ConnectionManager
	store   MessageStore
	logger  *log.Logger
}

func NewHandler(manager *ConnectionManager, store MessageStore) *Handler {
	return &Handler{
		manager: manager,
		store:   store,
		logger:  log.New(log.Writer(), "[chat] ", log.LstdFlags),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/ws/chat", h.handleWebSocket)
	router.GET("/chat/status", h.status)
	router.GET("/messages", h.conversationHistory)
}

// handleWebSocket validates the profile UUID from the query string and
// upgrades the connection. Each profile keeps a single socket.
func (h *Handler) handleWebSocket(c *gin.Context) {
	profileUUID := c.Query("profile_uuid")
	if _, err := uuid.Parse(profileUUID); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid profile_uuid, must be UUID", nil)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade error: %v", err)
		return
	}

	client := h.manager.Register(profileUUID, conn)
	h.logger.Printf("profile %s connected", profileUUID)

	go h.readLoop(client)
	go h.writeLoop(client)
}

func (h *Handler) readLoop(client *Client) {
	defer func() {
		h.manager.Unregister(client.ProfileUUID)
		client.Conn.Close()
		h.logger.Printf("profile %s disconnected", client.ProfileUUID)
	}()

	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-client.Done:
			return
		default:
		}

		var in inbound
		if err := client.Conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Printf("websocket error for profile %s: %v", client.ProfileUUID, err)
			}
			return
		}

		switch in.Event {
		case "read":
			go h.processReadReceipt(client, in)
		default:
			go h.processMessage(client, in)
		}
	}
}

func (h *Handler) writeLoop(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-client.Done:
			return

		case payload, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteJSON(payload); err != nil {
				h.logger.Printf("write error for profile %s: %v", client.ProfileUUID, err)
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logger.Printf("ping error for profile %s: %v", client.ProfileUUID, err)
				return
			}
		}
	}
}

func (h *Handler) processMessage(client *Client, in inbound) {
	if err := validateInbound(in, client.ProfileUUID); err != nil {
		h.sendError(client, err.Error())
		return
	}

	// Persist before forwarding so the receiver never sees a message the
	// sender cannot later fetch from history.
	msg, err := h.store.SaveMessage(context.Background(), client.ProfileUUID, in.ReceiverUUID, in.Content)
	if err != nil {
		h.logger.Printf("db insert failed for %s -> %s: %v", client.ProfileUUID, in.ReceiverUUID, err)
		h.sendError(client, "failed to persist message")
		return
	}

	status := "queued"
	if h.manager.IsOnline(msg.ReceiverUUID) {
		if err := h.manager.Push(msg.ReceiverUUID, msg); err != nil {
			h.sendError(client, fmt.Sprintf("failed to deliver message: %v", err))
			return
		}
		status = "sent"
	}

	select {
	case client.Send <- ack{Event: "ack", MessageID: msg.ID, Status: status}:
	case <-client.Done:
	}
}

func (h *Handler) processReadReceipt(client *Client, in inbound) {
	if len(in.MessageIDs) == 0 {
		h.sendError(client, "message_ids required for read receipt")
		return
	}

	senders, err := h.store.MarkMessagesRead(context.Background(), client.ProfileUUID, in.MessageIDs)
	if err != nil {
		h.logger.Printf("failed to mark messages read for %s: %v", client.ProfileUUID, err)
		h.sendError(client, "failed to mark messages as read")
		return
	}

	notification := readNotification{
		Event:      "read",
		MessageIDs: in.MessageIDs,
		ReadBy:     client.ProfileUUID,
	}
	for _, sender := range senders {
		if h.manager.IsOnline(sender) {
			if err := h.manager.Push(sender, notification); err != nil {
				h.logger.Printf("failed to send read receipt to %s: %v", sender, err)
			}
		}
	}
}

func validateInbound(in inbound, senderUUID string) error {
	if in.Content == "" {
		return fmt.Errorf("message content cannot be empty")
	}
	if len(in.Content) > maxContentLength {
		return fmt.Errorf("message content too long (max %d characters)", maxContentLength)
	}
	if in.ReceiverUUID == "" {
		return fmt.Errorf("receiver_uuid is required")
	}
	if in.ReceiverUUID == senderUUID {
		return fmt.Errorf("cannot send messages to yourself")
	}
	return nil
}

func (h *Handler) sendError(client *Client, msg string) {
	select {
	case client.Send <- socketError{Event: "error", Error: msg}:
	case <-client.Done:
	}
}

// @Summary      Online collectors
// @Tags         chat
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /chat/status [get]
func (h *Handler) status(c *gin.Context) {
	online := h.manager.OnlineProfiles()
	response.SendAPIResponse(c, http.StatusOK, true, "online status", map[string]interface{}{
		"online_profiles": online,
		"count":           len(online),
	})
}

// @Summary      Conversation history
// @Description  Messages between the requesting profile and a peer, oldest first.
// @Tags         chat
// @Param        profile_uuid query string true  "Requesting profile UUID"
// @Param        peer_uuid    query string true  "Peer profile UUID"
// @Param        limit        query int    false "Maximum messages to return (max 100)"
// @Param        before       query string false "RFC 3339 cursor for pagination"
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /messages [get]
func (h *Handler) conversationHistory(c *gin.Context) {
	profileUUID := c.Query("profile_uuid")
	if _, err := uuid.Parse(profileUUID); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid profile_uuid, must be UUID", nil)
		return
	}
	peerUUID := c.Query("peer_uuid")
	if peerUUID == "" {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "peer_uuid is required", nil)
		return
	}

	limit := 50
	if ls := c.Query("limit"); ls != "" {
		parsed, err := strconv.Atoi(ls)
		if err != nil {
			response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid limit parameter", nil)
			return
		}
		limit = parsed
	}

	before := time.Now().UTC()
	if bs := c.Query("before"); bs != "" {
		parsed, err := time.Parse(time.RFC3339, bs)
		if err != nil {
			response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid before parameter, must be RFC 3339", nil)
			return
		}
		before = parsed
	}

	messages, err := h.store.ConversationHistory(c.Request.Context(), profileUUID, peerUUID, limit, before)
	if err != nil {
		h.logger.Printf("failed to fetch messages for %s <-> %s: %v", profileUUID, peerUUID, err)
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "failed to fetch messages", nil)
		return
	}

	response.SendAPIResponse(c, http.StatusOK, true, "messages", map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}
