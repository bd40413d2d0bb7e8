package databases

// go generate: mockery --name ChatDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pranaou2005/Wheelhub-backend/models"
)

const chatName = "chats"

// ChatDatabase contains the methods to use with the chat database
type ChatDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Chat, error)
	Find(ctx context.Context, filter interface{}) ([]models.Chat, error)
	Start(ctx context.Context, a, b primitive.ObjectID, now time.Time) (*models.Chat, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}) (*models.Chat, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error)
}

type chatDatabase struct {
	db DatabaseHelper
}

// NewChatDatabase initializes a new instance of chat database with the provided db connection
func NewChatDatabase(db DatabaseHelper) ChatDatabase {
	return &chatDatabase{
		db: db,
	}
}

func (c *chatDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Chat, error) {
	chat := &models.Chat{}
	err := c.db.Collection(chatName).FindOne(ctx, filter).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Find returns the matching chats, most recently active first
func (c *chatDatabase) Find(ctx context.Context, filter interface{}) ([]models.Chat, error) {
	var chats []models.Chat
	err := findAll(ctx, c.db.Collection(chatName), filter, &chats, newestFirst("updatedAt"))
	if err != nil {
		return nil, err
	}
	return chats, nil
}

// Start returns the active chat between a and b, creating it when none exists. The pair key
// is backed by a partial unique index so two concurrent starts end up on the same chat.
func (c *chatDatabase) Start(ctx context.Context, a, b primitive.ObjectID, now time.Time) (*models.Chat, error) {
	filter := bson.M{"pairKey": models.PairKey(a, b), "isDeleted": false}
	update := bson.M{"$setOnInsert": bson.M{
		"participants": models.SortedPair(a, b),
		"messages":     []models.Message{},
		"createdAt":    now,
		"updatedAt":    now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	chat := &models.Chat{}
	err := c.db.Collection(chatName).FindOneAndUpdate(ctx, filter, update, opts).Decode(&chat)
	if errors.Is(err, ErrDuplicateKey) {
		return c.FindOne(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	return chat, nil
}

func (c *chatDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}) (*models.Chat, error) {
	chat := &models.Chat{}
	err := c.db.Collection(chatName).FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// UpdateOne returns the number of matched documents
func (c *chatDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	res, err := c.db.Collection(chatName).UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}
