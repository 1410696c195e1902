package room

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"TingFM/logger"
	"TingFM/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client 一条房间事件订阅连接
type Client struct {
	ID       string // 连接标识，日志排查用
	RoomID   string
	UserID   string
	Username string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient 包装一条已升级的WebSocket连接
func NewClient(hub *Hub, conn *websocket.Conn, roomID, userID, username string) *Client {
	return &Client{
		ID:       uuid.NewString(),
		RoomID:   roomID,
		UserID:   userID,
		Username: username,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 64),
	}
}

type broadcastMessage struct {
	roomID  string
	payload []byte
}

// Hub 房间事件广播中心。
// 单协程主循环消化注册、注销、广播和整房间关闭，连接集合只被这个
// 协程和读锁快照访问。每条连接各有带缓冲的发送队列，队列满视为
// 消费太慢，直接踢掉连接而不是拖慢整个房间的广播。
type Hub struct {
	// 房间 → 连接集合
	rooms map[string]map[*Client]bool

	// 房间内一个用户只保留一条连接
	userClients map[string]*Client // key: roomID:userID

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage
	closeRoom  chan string

	mu   sync.RWMutex
	done chan struct{}
}

// NewHub 创建事件广播中心
func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[string]map[*Client]bool),
		userClients: make(map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *broadcastMessage, 256),
		closeRoom:   make(chan string),
		done:        make(chan struct{}),
	}
}

// Run 启动主循环，独立协程里跑
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastToRoom(msg)

		case roomID := <-h.closeRoom:
			// 先送完排队的广播，房间的告别事件要赶在断开之前到达
			h.drainBroadcasts()
			h.dropRoom(roomID)

		case <-h.done:
			h.cleanup()
			return
		}
	}
}

// Stop 停止主循环并断开所有连接
func (h *Hub) Stop() {
	close(h.done)
}

// Register 登记新连接
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister 注销连接
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast 向房间的所有订阅者推送事件
func (h *Hub) Broadcast(event *model.RoomEvent) {
	event.Timestamp = time.Now().UnixMilli()
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Warn("序列化房间事件失败",
			logger.String("type", string(event.Type)),
			logger.ErrorField(err))
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{roomID: event.RoomID, payload: payload}:
	case <-h.done:
	}
}

// DropRoom 房间关闭后断开它的所有订阅连接
func (h *Hub) DropRoom(roomID string) {
	select {
	case h.closeRoom <- roomID:
	case <-h.done:
	}
}

func (h *Hub) clientKey(roomID, userID string) string {
	return fmt.Sprintf("%s:%s", roomID, userID)
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := h.clientKey(client.RoomID, client.UserID)

	// 同一用户重复订阅时踢掉旧连接
	if old, ok := h.userClients[key]; ok {
		h.removeClient(old)
	}

	if h.rooms[client.RoomID] == nil {
		h.rooms[client.RoomID] = make(map[*Client]bool)
	}
	h.rooms[client.RoomID][client] = true
	h.userClients[key] = client

	logger.Info("事件订阅已建立",
		logger.String("conn", client.ID),
		logger.String("room", client.RoomID),
		logger.String("user", client.UserID))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeClient(client)
}

// removeClient 需要持有写锁
func (h *Hub) removeClient(client *Client) {
	clients, ok := h.rooms[client.RoomID]
	if !ok || !clients[client] {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.RoomID)
	}

	key := h.clientKey(client.RoomID, client.UserID)
	if h.userClients[key] == client {
		delete(h.userClients, key)
	}

	logger.Info("事件订阅已断开",
		logger.String("conn", client.ID),
		logger.String("room", client.RoomID),
		logger.String("user", client.UserID))
}

func (h *Hub) broadcastToRoom(msg *broadcastMessage) {
	h.mu.RLock()
	clients, ok := h.rooms[msg.roomID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// 复制连接列表，发送不占着锁
	list := make([]*Client, 0, len(clients))
	for client := range clients {
		list = append(list, client)
	}
	h.mu.RUnlock()

	for _, client := range list {
		select {
		case client.send <- msg.payload:
		default:
			// 发送队列满，踢掉慢消费者
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) drainBroadcasts() {
	for {
		select {
		case msg := <-h.broadcast:
			h.broadcastToRoom(msg)
		default:
			return
		}
	}
}

func (h *Hub) dropRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[roomID] {
		delete(h.userClients, h.clientKey(roomID, client.UserID))
		close(client.send)
	}
	delete(h.rooms, roomID)
}

func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.rooms {
		for client := range clients {
			close(client.send)
		}
	}
	h.rooms = make(map[string]map[*Client]bool)
	h.userClients = make(map[string]*Client)
}

// SubscriberCount 房间当前的订阅连接数
func (h *Hub) SubscriberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// ========== Client 读写循环 ==========

// ReadPump 读取循环。订阅连接不承载指令，入站数据只用来探活，
// 读到错误即注销连接。
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("订阅连接读取出错",
					logger.String("conn", c.ID),
					logger.String("room", c.RoomID),
					logger.ErrorField(err))
			}
			return
		}
	}
}

// WritePump 写入循环，定期发ping保活
func (c *Client) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub 关掉了发送队列
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
