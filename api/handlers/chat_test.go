package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pranaou2005/Wheelhub-backend/api/handlers"
	"github.com/pranaou2005/Wheelhub-backend/api/testhelpers"
	"github.com/pranaou2005/Wheelhub-backend/databases"
	"github.com/pranaou2005/Wheelhub-backend/databases/mocks"
	"github.com/pranaou2005/Wheelhub-backend/models"
)

type chatFixture struct {
	buyer, seller primitive.ObjectID
	chat          *models.Chat
}

func newChatFixture() chatFixture {
	buyer, seller := primitive.NewObjectID(), primitive.NewObjectID()
	return chatFixture{
		buyer:  buyer,
		seller: seller,
		chat: &models.Chat{
			ID:           primitive.NewObjectID(),
			Participants: models.SortedPair(buyer, seller),
			PairKey:      models.PairKey(buyer, seller),
			Messages:     []models.Message{},
		},
	}
}

func chatRequest(t *testing.T, method string, body interface{}, vars map[string]string, uid primitive.ObjectID) *http.Request {
	return testhelpers.AsUser(testhelpers.JSONRequest(t, method, "/", body, vars), uid, models.RoleBuyer)
}

func TestChat_StartChatHandler(t *testing.T) {
	f := newChatFixture()
	db := &mocks.ChatDatabase{}
	udb := &mocks.UserDatabase{}
	udb.On("FindOne", mock.Anything, bson.M{"_id": f.seller}).Return(&models.User{ID: f.seller}, nil)
	db.On("Start", mock.Anything, f.buyer, f.seller, mock.AnythingOfType("time.Time")).Return(f.chat, nil)

	c := handlers.Chat{DB: db, UDB: udb}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.StartChatHandler).ServeHTTP(rr, chatRequest(t, "POST", map[string]string{"receiverId": f.seller.Hex()}, nil, f.buyer))

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Message string      `json:"message"`
		Chat    models.Chat `json:"chat"`
	}
	testhelpers.DecodeBody(t, rr, &body)
	assert.Equal(t, "Chat started successfully", body.Message)
	assert.Equal(t, f.chat.ID, body.Chat.ID)
	assert.NotContains(t, rr.Body.String(), "pairKey")
}

func TestChat_StartChatHandlerReturnsSameChatForEitherParticipant(t *testing.T) {
	f := newChatFixture()
	db := &mocks.ChatDatabase{}
	udb := &mocks.UserDatabase{}
	udb.On("FindOne", mock.Anything, mock.Anything).Return(&models.User{}, nil)
	db.On("Start", mock.Anything, f.buyer, f.seller, mock.Anything).Return(f.chat, nil)
	db.On("Start", mock.Anything, f.seller, f.buyer, mock.Anything).Return(f.chat, nil)

	c := handlers.Chat{DB: db, UDB: udb}
	fromBuyer := httptest.NewRecorder()
	http.HandlerFunc(c.StartChatHandler).ServeHTTP(fromBuyer, chatRequest(t, "POST", map[string]string{"receiverId": f.seller.Hex()}, nil, f.buyer))
	fromSeller := httptest.NewRecorder()
	http.HandlerFunc(c.StartChatHandler).ServeHTTP(fromSeller, chatRequest(t, "POST", map[string]string{"receiverId": f.buyer.Hex()}, nil, f.seller))

	assert.Equal(t, http.StatusOK, fromBuyer.Code)
	assert.Equal(t, fromBuyer.Body.String(), fromSeller.Body.String())
}

func TestChat_StartChatHandlerRejections(t *testing.T) {
	self := primitive.NewObjectID()
	tests := []struct {
		name       string
		receiverID string
		status     int
		message    string
	}{
		{"missing receiver", "", http.StatusBadRequest, "receiverId is required"},
		{"malformed receiver", "1234", http.StatusBadRequest, "invalid id"},
		{"self chat", self.Hex(), http.StatusBadRequest, "You cannot start a chat with yourself"},
		{"unknown receiver", primitive.NewObjectID().Hex(), http.StatusNotFound, "User not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mocks.ChatDatabase{}
			udb := &mocks.UserDatabase{}
			udb.On("FindOne", mock.Anything, mock.Anything).Return(nil, databases.ErrNotFound)

			c := handlers.Chat{DB: db, UDB: udb}
			rr := httptest.NewRecorder()
			http.HandlerFunc(c.StartChatHandler).ServeHTTP(rr, chatRequest(t, "POST", map[string]string{"receiverId": tt.receiverID}, nil, self))

			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.message)
			db.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestChat_SendMessageHandler(t *testing.T) {
	f := newChatFixture()
	db := &mocks.ChatDatabase{}
	db.On("FindOne", mock.Anything, bson.M{"_id": f.chat.ID, "isDeleted": false}).Return(f.chat, nil)
	db.On("FindOneAndUpdate", mock.Anything,
		bson.M{"_id": f.chat.ID, "isDeleted": false},
		mock.MatchedBy(func(update bson.M) bool {
			m := update["$push"].(bson.M)["messages"].(models.Message)
			return m.SenderID == f.buyer && m.Text == "Is it still available?" && !m.IsImportant && !m.ID.IsZero()
		}),
	).Return(f.chat, nil)

	hub := handlers.NewChatHub()
	events, cancel := hub.Subscribe(f.chat.ID.Hex())
	defer cancel()

	c := handlers.Chat{DB: db, Hub: hub}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.SendMessageHandler).ServeHTTP(rr, chatRequest(t, "POST",
		map[string]string{"text": "Is it still available?"},
		map[string]string{"chatId": f.chat.ID.Hex()}, f.buyer))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Message sent")
	select {
	case ev := <-events:
		assert.Equal(t, handlers.ChatEventMessage, ev.Type)
		assert.Equal(t, "Is it still available?", ev.Message.Text)
	default:
		t.Fatal("expected a broadcast event")
	}
	db.AssertExpectations(t)
}

func TestChat_SendMessageHandlerRejections(t *testing.T) {
	f := newChatFixture()
	outsider := primitive.NewObjectID()
	tests := []struct {
		name    string
		text    string
		uid     primitive.ObjectID
		found   bool
		status  int
		message string
	}{
		{"empty text", "  ", f.buyer, true, http.StatusBadRequest, "Message text is required"},
		{"outsider", "hi", outsider, true, http.StatusForbidden, "Access denied: you are not a participant of this chat"},
		{"deleted or missing chat", "hi", f.buyer, false, http.StatusNotFound, "Chat not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mocks.ChatDatabase{}
			if tt.found {
				db.On("FindOne", mock.Anything, mock.Anything).Return(f.chat, nil)
			} else {
				db.On("FindOne", mock.Anything, mock.Anything).Return(nil, databases.ErrNotFound)
			}

			c := handlers.Chat{DB: db}
			rr := httptest.NewRecorder()
			http.HandlerFunc(c.SendMessageHandler).ServeHTTP(rr, chatRequest(t, "POST",
				map[string]string{"text": tt.text},
				map[string]string{"chatId": f.chat.ID.Hex()}, tt.uid))

			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.message)
			db.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestChat_ChatsHandler(t *testing.T) {
	f := newChatFixture()
	db := &mocks.ChatDatabase{}
	udb := &mocks.UserDatabase{}
	db.On("Find", mock.Anything, bson.M{"participants": f.buyer, "isDeleted": false}).Return([]models.Chat{*f.chat}, nil)
	udb.On("Find", mock.Anything, mock.Anything).Return([]models.User{
		{ID: f.buyer, Name: "Buyer", Email: "buyer@example.com"},
		{ID: f.seller, Name: "Seller", Email: "seller@example.com"},
	}, nil)

	c := handlers.Chat{DB: db, UDB: udb}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.ChatsHandler).ServeHTTP(rr, chatRequest(t, "GET", nil, nil, f.buyer))

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Count int `json:"count"`
		Chats []struct {
			ID           string               `json:"_id"`
			Participants []models.UserSummary `json:"participants"`
		} `json:"chats"`
	}
	testhelpers.DecodeBody(t, rr, &body)
	require.Equal(t, 1, body.Count)
	require.Len(t, body.Chats[0].Participants, 2)
	names := []string{body.Chats[0].Participants[0].Name, body.Chats[0].Participants[1].Name}
	assert.ElementsMatch(t, []string{"Buyer", "Seller"}, names)
}

func TestChat_ChatsHandlerEmpty(t *testing.T) {
	db := &mocks.ChatDatabase{}
	udb := &mocks.UserDatabase{}
	db.On("Find", mock.Anything, mock.Anything).Return(nil, nil)

	c := handlers.Chat{DB: db, UDB: udb}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.ChatsHandler).ServeHTTP(rr, chatRequest(t, "GET", nil, nil, primitive.NewObjectID()))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"count":0,"chats":[]}`, rr.Body.String())
	udb.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}

func TestChat_ChatByIDHandlerPopulatesSenders(t *testing.T) {
	f := newChatFixture()
	f.chat.Messages = []models.Message{models.NewMessage(f.seller, "hello", time.Now())}
	db := &mocks.ChatDatabase{}
	udb := &mocks.UserDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(f.chat, nil)
	udb.On("Find", mock.Anything, mock.Anything).Return([]models.User{{ID: f.seller, Name: "Seller", Email: "seller@example.com"}}, nil)

	c := handlers.Chat{DB: db, UDB: udb}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.ChatByIDHandler).ServeHTTP(rr, chatRequest(t, "GET", nil, map[string]string{"chatId": f.chat.ID.Hex()}, f.buyer))

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Messages []struct {
			Text     string             `json:"text"`
			SenderID models.UserSummary `json:"senderId"`
		} `json:"messages"`
	}
	testhelpers.DecodeBody(t, rr, &body)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "Seller", body.Messages[0].SenderID.Name)
	assert.Equal(t, f.seller, body.Messages[0].SenderID.ID)
	assert.NotContains(t, rr.Body.String(), "seller@example.com")
}

func TestChat_ChatByIDHandlerOutsider(t *testing.T) {
	f := newChatFixture()
	db := &mocks.ChatDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(f.chat, nil)

	c := handlers.Chat{DB: db, UDB: &mocks.UserDatabase{}}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.ChatByIDHandler).ServeHTTP(rr, chatRequest(t, "GET", nil, map[string]string{"chatId": f.chat.ID.Hex()}, primitive.NewObjectID()))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestChat_MarkImportantHandler(t *testing.T) {
	f := newChatFixture()
	msg := models.NewMessage(f.seller, "price is final", time.Now())
	f.chat.Messages = []models.Message{msg}
	flagged := *f.chat
	flagged.Messages = []models.Message{msg}
	flagged.Messages[0].IsImportant = true

	db := &mocks.ChatDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(f.chat, nil)
	db.On("FindOneAndUpdate", mock.Anything,
		bson.M{"_id": f.chat.ID, "isDeleted": false, "messages._id": msg.ID},
		bson.M{"$set": bson.M{"messages.$.isImportant": true}},
	).Return(&flagged, nil)

	hub := handlers.NewChatHub()
	events, cancel := hub.Subscribe(f.chat.ID.Hex())
	defer cancel()

	c := handlers.Chat{DB: db, Hub: hub}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.MarkImportantHandler).ServeHTTP(rr, chatRequest(t, "PUT", nil,
		map[string]string{"chatId": f.chat.ID.Hex(), "messageId": msg.ID.Hex()}, f.buyer))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Message marked as important")
	assert.Contains(t, rr.Body.String(), `"isImportant":true`)
	ev := <-events
	assert.Equal(t, handlers.ChatEventImportant, ev.Type)
	assert.True(t, ev.Message.IsImportant)
}

func TestChat_MarkImportantHandlerUnknownMessage(t *testing.T) {
	f := newChatFixture()
	db := &mocks.ChatDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(f.chat, nil)

	c := handlers.Chat{DB: db}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.MarkImportantHandler).ServeHTTP(rr, chatRequest(t, "PUT", nil,
		map[string]string{"chatId": f.chat.ID.Hex(), "messageId": primitive.NewObjectID().Hex()}, f.seller))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Message not found")
	db.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestChat_DeleteChatHandler(t *testing.T) {
	f := newChatFixture()
	db := &mocks.ChatDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(f.chat, nil)
	db.On("UpdateOne", mock.Anything,
		bson.M{"_id": f.chat.ID, "isDeleted": false},
		mock.MatchedBy(func(update bson.M) bool {
			return update["$set"].(bson.M)["isDeleted"] == true
		}),
	).Return(int64(1), nil)

	hub := handlers.NewChatHub()
	events, _ := hub.Subscribe(f.chat.ID.Hex())

	c := handlers.Chat{DB: db, Hub: hub}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.DeleteChatHandler).ServeHTTP(rr, chatRequest(t, "DELETE", nil, map[string]string{"chatId": f.chat.ID.Hex()}, f.seller))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Chat deleted successfully"}`, rr.Body.String())
	_, open := <-events
	assert.False(t, open)
	assert.Zero(t, hub.Subscribers(f.chat.ID.Hex()))
}

func TestChat_DeleteChatHandlerOutsider(t *testing.T) {
	f := newChatFixture()
	db := &mocks.ChatDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(f.chat, nil)

	c := handlers.Chat{DB: db}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.DeleteChatHandler).ServeHTTP(rr, chatRequest(t, "DELETE", nil, map[string]string{"chatId": f.chat.ID.Hex()}, primitive.NewObjectID()))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	db.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestChat_DeleteChatHandlerDatabaseError(t *testing.T) {
	f := newChatFixture()
	db := &mocks.ChatDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(f.chat, nil)
	db.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("mocked-error"))

	c := handlers.Chat{DB: db}
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.DeleteChatHandler).ServeHTTP(rr, chatRequest(t, "DELETE", nil, map[string]string{"chatId": f.chat.ID.Hex()}, f.buyer))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestChat_ChatSocketHandlerStreamsEvents(t *testing.T) {
	f := newChatFixture()
	db := &mocks.ChatDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(f.chat, nil)
	hub := handlers.NewChatHub()
	c := handlers.Chat{DB: db, Hub: hub}

	r := mux.NewRouter()
	r.HandleFunc("/chats/{chatId}/ws", func(w http.ResponseWriter, req *http.Request) {
		c.ChatSocketHandler(w, testhelpers.AsUser(req, f.buyer, models.RoleBuyer))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chats/" + f.chat.ID.Hex() + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers(f.chat.ID.Hex()) == 1 }, time.Second, 10*time.Millisecond)

	msg := models.NewMessage(f.seller, "hello", time.Now())
	hub.Broadcast(f.chat.ID.Hex(), handlers.ChatEvent{Type: handlers.ChatEventMessage, ChatID: f.chat.ID.Hex(), Message: msg})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev handlers.ChatEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, handlers.ChatEventMessage, ev.Type)
	assert.Equal(t, "hello", ev.Message.Text)

	hub.CloseChat(f.chat.ID.Hex())
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestChat_ChatSocketHandlerOutsider(t *testing.T) {
	f := newChatFixture()
	db := &mocks.ChatDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(f.chat, nil)
	c := handlers.Chat{DB: db, Hub: handlers.NewChatHub()}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.ChatSocketHandler).ServeHTTP(rr, chatRequest(t, "GET", nil, map[string]string{"chatId": f.chat.ID.Hex()}, primitive.NewObjectID()))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
