package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/pranaou2005/Wheelhub-backend/api"
	"github.com/pranaou2005/Wheelhub-backend/config"
	"github.com/pranaou2005/Wheelhub-backend/databases"
	"github.com/pranaou2005/Wheelhub-backend/models"
)

const (
	socketWriteWait  = 10 * time.Second
	socketPongWait   = 60 * time.Second
	socketPingPeriod = socketPongWait * 9 / 10
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Chat exported for testing purposes
type Chat struct {
	DB  databases.ChatDatabase
	UDB databases.UserDatabase
	Hub *ChatHub
}

type startChatRequest struct {
	ReceiverID string `json:"receiverId"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type chatResponse struct {
	Message string       `json:"message"`
	Chat    *models.Chat `json:"chat"`
}

type chatsResponse struct {
	Count int                   `json:"count"`
	Chats []models.ChatListItem `json:"chats"`
}

// loadActiveChat loads the chat named by the path when it exists, is not soft-deleted and
// the caller takes part in it. It writes the error response itself.
func (c Chat) loadActiveChat(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Chat, primitive.ObjectID, bool) {
	chatID, ok := pathID(w, r, "chatId")
	if !ok {
		return nil, primitive.NilObjectID, false
	}
	_, uid, ok := caller(w, r)
	if !ok {
		return nil, primitive.NilObjectID, false
	}

	chat, err := c.DB.FindOne(ctx, bson.M{"_id": chatID, "isDeleted": false})
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("Chat not found", http.StatusNotFound, w, nil)
		return nil, primitive.NilObjectID, false
	}
	if err != nil {
		serverError(w, err)
		return nil, primitive.NilObjectID, false
	}
	if !chat.HasParticipant(uid) {
		config.ErrorStatus("Access denied: you are not a participant of this chat", http.StatusForbidden, w, models.ErrNotParticipant)
		return nil, primitive.NilObjectID, false
	}
	return chat, uid, true
}

// StartChatHandler returns the active chat between the caller and the receiver, creating it
// on first contact
func (c Chat) StartChatHandler(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := caller(w, r)
	if !ok {
		return
	}

	var req startChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if strings.TrimSpace(req.ReceiverID) == "" {
		config.ErrorStatus("receiverId is required", http.StatusBadRequest, w, nil)
		return
	}
	receiverID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ReceiverID))
	if err != nil {
		config.ErrorStatus("invalid id", http.StatusBadRequest, w, err)
		return
	}
	if receiverID == uid {
		config.ErrorStatus("You cannot start a chat with yourself", http.StatusBadRequest, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err = c.UDB.FindOne(ctx, bson.M{"_id": receiverID}); err != nil {
		if errors.Is(err, databases.ErrNotFound) {
			config.ErrorStatus("User not found", http.StatusNotFound, w, nil)
			return
		}
		serverError(w, err)
		return
	}

	chat, err := c.DB.Start(ctx, uid, receiverID, time.Now())
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Message: "Chat started successfully", Chat: chat})
}

// SendMessageHandler appends a message from the caller to a chat
func (c Chat) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		config.ErrorStatus("Message text is required", http.StatusBadRequest, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	chat, uid, ok := c.loadActiveChat(ctx, w, r)
	if !ok {
		return
	}

	now := time.Now()
	message := models.NewMessage(uid, req.Text, now)
	updated, err := c.DB.FindOneAndUpdate(ctx,
		bson.M{"_id": chat.ID, "isDeleted": false},
		bson.M{
			"$push": bson.M{"messages": message},
			"$set":  bson.M{"updatedAt": now},
		},
	)
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("Chat not found", http.StatusNotFound, w, nil)
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}

	c.broadcast(ChatEvent{Type: ChatEventMessage, ChatID: chat.ID.Hex(), Message: message})
	writeJSON(w, http.StatusOK, chatResponse{Message: "Message sent", Chat: updated})
}

// ChatsHandler lists the caller's active chats, most recently active first
func (c Chat) ChatsHandler(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	chats, err := c.DB.Find(ctx, bson.M{"participants": uid, "isDeleted": false})
	if err != nil {
		serverError(w, err)
		return
	}

	var ids []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, chat := range chats {
		for _, p := range chat.Participants {
			if !seen[p] {
				seen[p] = true
				ids = append(ids, p)
			}
		}
	}
	users, err := c.summaries(ctx, ids)
	if err != nil {
		serverError(w, err)
		return
	}

	items := make([]models.ChatListItem, 0, len(chats))
	for _, chat := range chats {
		item := models.ChatListItem{Chat: chat, Participants: make([]models.UserSummary, 0, len(chat.Participants))}
		for _, p := range chat.Participants {
			item.Participants = append(item.Participants, users.get(p))
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, chatsResponse{Count: len(items), Chats: items})
}

// ChatByIDHandler returns a chat with its message senders populated
func (c Chat) ChatByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	chat, _, ok := c.loadActiveChat(ctx, w, r)
	if !ok {
		return
	}

	users, err := c.summaries(ctx, chat.Participants)
	if err != nil {
		serverError(w, err)
		return
	}

	view := models.ChatView{Chat: *chat, Messages: make([]models.MessageView, 0, len(chat.Messages))}
	for _, m := range chat.Messages {
		sender := users.get(m.SenderID)
		sender.Email = ""
		view.Messages = append(view.Messages, models.MessageView{Message: m, SenderID: sender})
	}
	writeJSON(w, http.StatusOK, view)
}

// MarkImportantHandler flags a single message of a chat as important
func (c Chat) MarkImportantHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	chat, _, ok := c.loadActiveChat(ctx, w, r)
	if !ok {
		return
	}
	messageID, ok := pathID(w, r, "messageId")
	if !ok {
		return
	}
	if _, err := chat.Message(messageID); err != nil {
		config.ErrorStatus("Message not found", http.StatusNotFound, w, nil)
		return
	}

	updated, err := c.DB.FindOneAndUpdate(ctx,
		bson.M{"_id": chat.ID, "isDeleted": false, "messages._id": messageID},
		bson.M{"$set": bson.M{"messages.$.isImportant": true}},
	)
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("Message not found", http.StatusNotFound, w, nil)
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}

	if m, err := updated.Message(messageID); err == nil {
		c.broadcast(ChatEvent{Type: ChatEventImportant, ChatID: chat.ID.Hex(), Message: *m})
	}
	writeJSON(w, http.StatusOK, chatResponse{Message: "Message marked as important", Chat: updated})
}

// DeleteChatHandler soft deletes a chat. It disappears from reads and a later start for the
// same pair opens a new chat.
func (c Chat) DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	chat, _, ok := c.loadActiveChat(ctx, w, r)
	if !ok {
		return
	}

	matched, err := c.DB.UpdateOne(ctx,
		bson.M{"_id": chat.ID, "isDeleted": false},
		bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		serverError(w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("Chat not found", http.StatusNotFound, w, nil)
		return
	}
	if c.Hub != nil {
		c.Hub.CloseChat(chat.ID.Hex())
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Chat deleted successfully"})
}

// ChatSocketHandler streams live events of a chat to a participant
func (c Chat) ChatSocketHandler(w http.ResponseWriter, r *http.Request) {
	if c.Hub == nil {
		config.ErrorStatus("live chat is not available", http.StatusServiceUnavailable, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	chat, uid, ok := c.loadActiveChat(ctx, w, r)
	cancel()
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "chatId", chat.ID.Hex(), "error", err)
		return
	}

	events, unsubscribe := c.Hub.Subscribe(chat.ID.Hex())
	zap.S().Debugw("chat subscriber connected", "chatId", chat.ID.Hex(), "userId", uid.Hex())

	go func() {
		defer unsubscribe()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(socketPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(socketPongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(socketPingPeriod)
	defer func() {
		ticker.Stop()
		unsubscribe()
		conn.Close()
		zap.S().Debugw("chat subscriber disconnected", "chatId", chat.ID.Hex(), "userId", uid.Hex())
	}()
	for {
		select {
		case ev, open := <-events:
			conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if !open {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c Chat) broadcast(ev ChatEvent) {
	if c.Hub != nil {
		c.Hub.Broadcast(ev.ChatID, ev)
	}
}

type userSummaries map[primitive.ObjectID]models.UserSummary

// get returns the summary of id, or a bare summary when the user no longer exists
func (s userSummaries) get(id primitive.ObjectID) models.UserSummary {
	if u, ok := s[id]; ok {
		return u
	}
	return models.UserSummary{ID: id}
}

func (c Chat) summaries(ctx context.Context, ids []primitive.ObjectID) (userSummaries, error) {
	out := userSummaries{}
	if len(ids) == 0 {
		return out, nil
	}
	users, err := c.UDB.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.Summary()
	}
	return out, nil
}
