package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"teenpatti-service/internal/middleware"
	"teenpatti-service/internal/service/game"
	appErr "teenpatti-service/pkg/errors"
	"teenpatti-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Intents handled here before a room exists; everything else goes to the room.
const (
	ActionCreateRoom = "create-room"
	ActionJoinRoom   = "join-room"
)

const sendBuffer = 64

type Handler struct {
	gameSvc *game.Service
}

func NewHandler(gameSvc *game.Service) *Handler {
	return &Handler{gameSvc: gameSvc}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// HandleWS upgrades the connection and resumes the session when the request
// carried a valid token for a seated player.
func (h *Handler) HandleWS(c *gin.Context) {
	sessionID, resumed := middleware.SessionID(c)
	if !resumed {
		sessionID = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	logger.Log.Info("New WebSocket connection",
		zap.String("session", sessionID),
		zap.Bool("resumed", resumed),
	)

	client := newClient(conn, sessionID, h.gameSvc)
	if resumed {
		if _, sub, err := h.gameSvc.Reconnect(context.Background(), sessionID); err == nil {
			client.attach(sub)
		}
	}
	client.run()
}

type incomingMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type createRoomBody struct {
	Name string `json:"name"`
}

type joinRoomBody struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type client struct {
	conn      *websocket.Conn
	sessionID string
	svc       *game.Service

	send      chan game.OutgoingMessage
	done      chan struct{}
	pingEvery time.Duration

	mu  sync.Mutex
	sub <-chan game.OutgoingMessage
}

func newClient(conn *websocket.Conn, sessionID string, svc *game.Service) *client {
	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	return &client{
		conn:      conn,
		sessionID: sessionID,
		svc:       svc,
		send:      make(chan game.OutgoingMessage, sendBuffer),
		done:      make(chan struct{}),
		pingEvery: 25 * time.Second,
	}
}

func (c *client) run() {
	go c.writePump()
	c.readPump()
}

// attach forwards a room subscription into the socket until the room closes
// it or the socket goes away.
func (c *client) attach(sub <-chan game.OutgoingMessage) {
	c.mu.Lock()
	c.sub = sub
	c.mu.Unlock()

	go func() {
		for msg := range sub {
			select {
			case c.send <- msg:
			case <-c.done:
				return
			}
		}
	}()
}

func (c *client) subscription() <-chan game.OutgoingMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sub
}

func (c *client) readPump() {
	defer func() {
		close(c.done)
		if sub := c.subscription(); sub != nil {
			c.svc.Disconnect(context.Background(), c.sessionID, sub)
		}
		c.conn.Close()
	}()

	for {
		mt, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Log.Info("WS read error", zap.Error(err), zap.String("session", c.sessionID))
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var incoming incomingMessage
		if err := json.Unmarshal(message, &incoming); err != nil {
			c.sendError("invalid payload")
			continue
		}
		if incoming.Type == "" {
			continue
		}
		if err := c.dispatch(incoming); err != nil {
			c.sendError(err.Error())
		}
	}
}

func (c *client) dispatch(msg incomingMessage) error {
	ctx := context.Background()
	switch msg.Type {
	case ActionCreateRoom:
		var body createRoomBody
		if err := decodeBody(msg.Data, &body); err != nil {
			return appErr.ErrInvalidName
		}
		_, sub, err := c.svc.CreateRoom(ctx, c.sessionID, body.Name)
		if err != nil {
			return err
		}
		c.attach(sub)
		return nil
	case ActionJoinRoom:
		var body joinRoomBody
		if err := decodeBody(msg.Data, &body); err != nil {
			return appErr.ErrRoomNotFound
		}
		_, sub, err := c.svc.JoinRoom(ctx, c.sessionID, body.Code, body.Name)
		if err != nil {
			return err
		}
		c.attach(sub)
		return nil
	default:
		return c.svc.HandleAction(ctx, c.sessionID, msg.Type, msg.Data)
	}
}

func decodeBody(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (c *client) sendError(message string) {
	msg := game.OutgoingMessage{
		Type: game.EventError,
		Seq:  0,
		Data: game.ErrorPayload{Message: message},
	}
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		logger.Log.Warn("client send buffer full", zap.String("session", c.sessionID))
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Log.Info("WS write error", zap.Error(err), zap.String("session", c.sessionID))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
