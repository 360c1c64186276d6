// cmd/push-gateway/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/mq"
)

const (
	serviceName   = "push-gateway"
	locationTopic = "delivery-locations"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var (
	nodeID   = serviceName + "-" + uuid.New().String()[:8]
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool { // 简化处理，允许所有跨域
			return true
		},
	}
)

// Hub 维护所有活跃的连接，按订单号广播位置更新。
// 同一订单允许多个观察端（买家的手机和网页端可以同时盯着配送轨迹）。
type Hub struct {
	clients    map[string]map[*Client]bool // orderID -> 订阅该订单的连接
	register   chan *Client
	unregister chan *Client
	broadcast  chan pushMessage
	lock       sync.RWMutex
}

type pushMessage struct {
	orderID string
	payload []byte
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan pushMessage, 256),
	}
}

func (h *Hub) run(ctx context.Context) error {
	for {
		select {
		case client := <-h.register:
			h.lock.Lock()
			if h.clients[client.orderID] == nil {
				h.clients[client.orderID] = make(map[*Client]bool)
			}
			h.clients[client.orderID][client] = true
			h.lock.Unlock()
			logger.Ctx(ctx).Info().
				Str("order_id", client.orderID).
				Str("node", nodeID).
				Msg("tracking client registered")
		case client := <-h.unregister:
			h.lock.Lock()
			if subs, ok := h.clients[client.orderID]; ok && subs[client] {
				delete(subs, client)
				if len(subs) == 0 {
					delete(h.clients, client.orderID)
				}
				close(client.send)
			}
			h.lock.Unlock()
		case msg := <-h.broadcast:
			h.lock.RLock()
			for client := range h.clients[msg.orderID] {
				select {
				case client.send <- msg.payload:
				default:
					// 写缓冲已满的慢连接直接放弃本条，不阻塞广播循环
				}
			}
			h.lock.RUnlock()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Client 是一个 WebSocket 连接的代表
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	orderID string
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// 客户端只发心跳，任何读错误都意味着连接结束
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("orderId")
	if orderID == "" {
		http.Error(w, "orderId is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256), orderID: orderID}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// consumeLocations 订阅位置主题，把每条上报转发给盯着对应订单的连接。
func consumeLocations(hub *Hub, reader *kafka.Reader) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		defer reader.Close()
		logger.Ctx(ctx).Info().Str("topic", locationTopic).Msg("location consumer started")
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Ctx(ctx).Error().Err(err).Msg("could not read location message, retrying")
				time.Sleep(1 * time.Second)
				continue
			}

			var envelope struct {
				OrderID string `json:"orderId"`
			}
			if err := json.Unmarshal(msg.Value, &envelope); err != nil || envelope.OrderID == "" {
				logger.Ctx(ctx).Warn().Err(err).Msg("skipping malformed location message")
				continue
			}
			hub.broadcast <- pushMessage{orderID: envelope.OrderID, payload: msg.Value}
		}
	}
}

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	hub := newHub()
	// 每个网关节点使用独立的消费组，位置更新是广播语义
	reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, locationTopic, nodeID)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8088,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
				serveWs(hub, w, r)
			})
		},
		BackgroundTasks: []func(ctx context.Context) error{
			hub.run,
			consumeLocations(hub, reader),
		},
	})
}
