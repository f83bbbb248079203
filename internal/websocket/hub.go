package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/pkg/metrics"
	"inspection-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "inspection_progress"

// Hub fans inspection progress out to websocket clients watching a work
// order. Clients registered with uuid.Nil watch every work order.
type Hub struct {
	// Registered clients: WorkOrderID -> set of clients
	clients map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns

	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb        redis.UniversalClient
	instanceID string

	logger  logger.ILogger
	metrics *metrics.Metrics
}

type clusterMessage struct {
	Origin      string          `json:"origin"`
	WorkOrderID string          `json:"work_order_id"`
	Message     json.RawMessage `json:"message"`
}

func NewHub(rdb redis.UniversalClient, log logger.ILogger, m *metrics.Metrics) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
		metrics:    m,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	defer h.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.WorkOrderID] == nil {
				h.clients[client.WorkOrderID] = make(map[*Client]struct{})
			}
			h.clients[client.WorkOrderID][client] = struct{}{}
			h.mu.Unlock()
			h.metrics.SetProgressSubscribers(h.Count())
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"work_order_id": client.WorkOrderID})

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.WorkOrderID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.Send)
				}
				if len(set) == 0 {
					delete(h.clients, client.WorkOrderID)
				}
			}
			h.mu.Unlock()
			h.metrics.SetProgressSubscribers(h.Count())
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"work_order_id": client.WorkOrderID})
		}
	}
}

// stop closes every client's Send channel so write pumps finish, then
// releases pumps waiting to join or leave.
func (h *Hub) stop() {
	h.mu.Lock()
	for id, set := range h.clients {
		for client := range set {
			close(client.Send)
		}
		delete(h.clients, id)
	}
	h.mu.Unlock()
	h.metrics.SetProgressSubscribers(0)
	close(h.done)
}

// join registers a client. It returns false once the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters a client. After the hub has stopped it returns at once.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Count returns the number of connected clients on this instance.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Publish delivers an event to local watchers and, when Redis is configured,
// to watchers connected to other instances.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	workOrderID, _ := events.WorkOrderID(event)

	data, err := json.Marshal(map[string]interface{}{
		"type":        event.EventType(),
		"data":        event.Payload(),
		"occurred_at": event.Timestamp(),
	})
	if err != nil {
		return err
	}

	h.deliverLocal(workOrderID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{
			Origin:      h.instanceID,
			WorkOrderID: workOrderID.String(),
			Message:     data,
		})
		if err := h.rdb.Publish(ctx, clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish progress to redis", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (h *Hub) deliverLocal(workOrderID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := []uuid.UUID{workOrderID}
	if workOrderID != uuid.Nil {
		targets = append(targets, uuid.Nil)
	}

	for _, id := range targets {
		for client := range h.clients[id] {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"work_order_id": id})
			}
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	defer h.stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			// Already delivered locally by Publish
			if payload.Origin == h.instanceID {
				continue
			}

			workOrderID, err := uuid.Parse(payload.WorkOrderID)
			if err != nil {
				continue
			}
			h.deliverLocal(workOrderID, payload.Message)
		}
	}
}
