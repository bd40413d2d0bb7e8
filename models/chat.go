package models

import (
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrMessageNotFound is returned when a message id is not part of a chat
	ErrMessageNotFound = errors.New("message not found")
	// ErrNotParticipant is returned when an identity is not one of the two chat participants
	ErrNotParticipant = errors.New("not a chat participant")
)

// Chat holds the structure for the chats collection in mongo. A chat belongs to exactly two
// participants and owns its messages.
type Chat struct {
	ID           primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Participants []primitive.ObjectID `json:"participants" bson:"participants"`
	PairKey      string               `json:"-" bson:"pairKey"`
	Messages     []Message            `json:"messages" bson:"messages"`
	IsDeleted    bool                 `json:"isDeleted" bson:"isDeleted"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Message is a single entry of a chat
type Message struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	SenderID    primitive.ObjectID `json:"senderId" bson:"senderId"`
	Text        string             `json:"text" bson:"text"`
	Timestamp   time.Time          `json:"timestamp" bson:"timestamp"`
	IsImportant bool               `json:"isImportant" bson:"isImportant"`
}

// NewMessage builds a message with a fresh id and server timestamp
func NewMessage(senderID primitive.ObjectID, text string, now time.Time) Message {
	return Message{
		ID:        primitive.NewObjectID(),
		SenderID:  senderID,
		Text:      text,
		Timestamp: now,
	}
}

// PairKey returns the order independent key of two participants
func PairKey(a, b primitive.ObjectID) string {
	ids := []string{a.Hex(), b.Hex()}
	sort.Strings(ids)
	return ids[0] + ":" + ids[1]
}

// SortedPair returns the two participants in the same order PairKey uses
func SortedPair(a, b primitive.ObjectID) []primitive.ObjectID {
	if a.Hex() > b.Hex() {
		return []primitive.ObjectID{b, a}
	}
	return []primitive.ObjectID{a, b}
}

// HasParticipant reports whether id is one of the chat participants
func (c Chat) HasParticipant(id primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// Message finds a message by id
func (c *Chat) Message(id primitive.ObjectID) (*Message, error) {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return &c.Messages[i], nil
		}
	}
	return nil, ErrMessageNotFound
}

// ChatListItem is a chat as returned by the list endpoint, with participants populated
type ChatListItem struct {
	Chat
	Participants []UserSummary `json:"participants"`
}

// MessageView is a message with its sender populated
type MessageView struct {
	Message
	SenderID UserSummary `json:"senderId"`
}

// ChatView is a single chat with message senders populated
type ChatView struct {
	Chat
	Messages []MessageView `json:"messages"`
}
