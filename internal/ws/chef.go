package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/windoze95/dapur-api/internal/logger"
	"github.com/windoze95/dapur-api/internal/middleware"
	"github.com/windoze95/dapur-api/internal/models"
	"go.uber.org/zap"
)

// WebSocket message types for the Chef AI protocol.
const (
	MsgTypeChatMessage     = "chat_message"     // User asks Chef AI a question
	MsgTypeChatResponse    = "chat_response"    // Chef AI answer
	MsgTypeSearchRequest   = "search_request"   // User asks for an AI recipe search
	MsgTypeSearchResults   = "search_results"   // Recipes found for a search
	MsgTypeHistoryAppended = "history_appended" // Another session of the user added turns
	MsgTypeError           = "error"            // Error message
	MsgTypeConnected       = "connected"        // Connection confirmed
)

// requestTimeout bounds the work done for a single incoming message.
const requestTimeout = 60 * time.Second

// WSMessage is the envelope for all messages sent over the chef WebSocket.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ChatMessagePayload is sent by the client to ask a cooking question.
type ChatMessagePayload struct {
	Message string `json:"message"`
}

// ChatResponsePayload is sent by the server with a Chef AI answer.
type ChatResponsePayload struct {
	Message string `json:"message"`
}

// SearchRequestPayload asks for recipes matching a free-text request.
type SearchRequestPayload struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

// SearchResultsPayload carries the recipes found for a search request.
type SearchResultsPayload struct {
	Query   string          `json:"query"`
	Recipes []models.Recipe `json:"recipes"`
}

// HistoryAppendedPayload tells other sessions which turns were added.
type HistoryAppendedPayload struct {
	Messages []models.ChatMessage `json:"messages"`
}

// ErrorPayload carries an error message to the client.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ConnectedPayload confirms a successful connection.
type ConnectedPayload struct {
	Username string `json:"username"`
}

// ChefBackend answers questions and searches on behalf of a user.
type ChefBackend interface {
	Ask(ctx context.Context, question, username string) string
	SearchRecipes(ctx context.Context, userInput, username string, maxResults int) []models.Recipe
	History(username string) []models.ChatMessage
}

// ChefHandler manages WebSocket connections for Chef AI chat.
type ChefHandler struct {
	Hub       *Hub
	JwtSecret string
	Users     middleware.UserLookup
	Chef      ChefBackend
	upgrader  websocket.Upgrader
}

// NewChefHandler returns a new ChefHandler. Browsers may only connect from
// allowedOrigins; clients that send no Origin header are accepted.
func NewChefHandler(hub *Hub, jwtSecret string, users middleware.UserLookup, chef ChefBackend, allowedOrigins []string) *ChefHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}
	return &ChefHandler{
		Hub:       hub,
		JwtSecret: jwtSecret,
		Users:     users,
		Chef:      chef,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleChefSession upgrades an HTTP request to a WebSocket connection for
// Chef AI chat. Authentication is done via a "token" query parameter
// because WebSocket connections cannot easily use Authorization headers.
func (ch *ChefHandler) HandleChefSession(c *gin.Context) {
	log := logger.FromContext(c)

	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "token query parameter is required"})
		return
	}
	userID, err := middleware.ParseAccessToken(tokenString, ch.JwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
		return
	}
	user, err := ch.Users.GetUserByID(userID)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unknown user"})
		return
	}

	conn, err := ch.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed",
			zap.String("username", user.Username),
			zap.Error(err),
		)
		return
	}

	client := &Client{
		Hub:      ch.Hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		RoomID:   user.Username,
		Username: user.Username,
	}
	ch.Hub.Register <- client

	ch.send(client, MsgTypeConnected, ConnectedPayload{Username: user.Username})

	log.Info("chef session started", zap.String("username", user.Username))

	go client.WritePump()
	go client.ReadPump(ch.handleMessage)
}

// handleMessage parses an incoming WebSocket message and routes it to the
// appropriate handler.
func (ch *ChefHandler) handleMessage(client *Client, data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		ch.sendError(client, "invalid message format")
		return
	}

	logger.ForUser(client.Username).Debug("received ws message", zap.String("type", msg.Type))

	switch msg.Type {
	case MsgTypeChatMessage:
		ch.handleChatMessage(client, msg.Payload)
	case MsgTypeSearchRequest:
		ch.handleSearchRequest(client, msg.Payload)
	default:
		ch.sendError(client, "unknown message type: "+msg.Type)
	}
}

// handleChatMessage answers a question and shares the new turns with the
// user's other sessions.
func (ch *ChefHandler) handleChatMessage(client *Client, payload json.RawMessage) {
	var chatMsg ChatMessagePayload
	if err := json.Unmarshal(payload, &chatMsg); err != nil {
		ch.sendError(client, "invalid chat message payload")
		return
	}
	if strings.TrimSpace(chatMsg.Message) == "" {
		ch.sendError(client, "message cannot be empty")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	answer := ch.Chef.Ask(ctx, chatMsg.Message, client.Username)
	ch.send(client, MsgTypeChatResponse, ChatResponsePayload{Message: answer})
	ch.broadcastHistory(client, 2)
}

// handleSearchRequest runs an AI recipe search.
func (ch *ChefHandler) handleSearchRequest(client *Client, payload json.RawMessage) {
	var req SearchRequestPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		ch.sendError(client, "invalid search request payload")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		ch.sendError(client, "query cannot be empty")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	recipes := ch.Chef.SearchRecipes(ctx, req.Query, client.Username, req.MaxResults)
	ch.send(client, MsgTypeSearchResults, SearchResultsPayload{Query: req.Query, Recipes: recipes})
	ch.broadcastHistory(client, 2)
}

// broadcastHistory sends the last n conversation turns to every other
// session of the client's user.
func (ch *ChefHandler) broadcastHistory(client *Client, n int) {
	history := ch.Chef.History(client.Username)
	if len(history) > n {
		history = history[len(history)-n:]
	}
	data, err := encode(MsgTypeHistoryAppended, HistoryAppendedPayload{Messages: history})
	if err != nil {
		return
	}
	ch.Hub.Broadcast <- &RoomMessage{
		RoomID:  client.RoomID,
		Message: data,
		Sender:  client,
	}
}

func (ch *ChefHandler) sendError(client *Client, message string) {
	ch.send(client, MsgTypeError, ErrorPayload{Message: message})
}

func (ch *ChefHandler) send(client *Client, msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		logger.ForUser(client.Username).Error("failed to encode ws message", zap.String("type", msgType), zap.Error(err))
		return
	}
	client.deliver(data)
}

func encode(msgType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WSMessage{Type: msgType, Payload: raw})
}
