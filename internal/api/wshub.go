// internal/api/wshub.go
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// JobHub pushes job lifecycle events to websocket subscribers, one
// subscription per project.
type JobHub struct {
	mu      sync.RWMutex
	clients map[string]map[*hubClient]struct{}
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewJobHub() *JobHub {
	return &JobHub{clients: make(map[string]map[*hubClient]struct{})}
}

// NotifyJobs broadcasts newly created or updated jobs to the project's
// subscribers. Slow clients get dropped rather than blocking the caller.
func (h *JobHub) NotifyJobs(projectID string, jobs []models.Job) {
	payload, err := json.Marshal(map[string]any{
		"type":       "jobs",
		"project_id": projectID,
		"jobs":       jobs,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("ws: marshaling job event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[projectID] {
		select {
		case client.send <- payload:
		default:
			// Full queue means the client stopped reading.
			go h.remove(projectID, client)
		}
	}
}

// Subscribe upgrades the request and streams job events for the project
// until the client disconnects.
func (h *JobHub) Subscribe(c *gin.Context, projectID string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	client := &hubClient{conn: conn, send: make(chan []byte, 64)}

	h.mu.Lock()
	if h.clients[projectID] == nil {
		h.clients[projectID] = make(map[*hubClient]struct{})
	}
	h.clients[projectID][client] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(projectID, client)
	h.readLoop(projectID, client)
}

func (h *JobHub) writeLoop(projectID string, client *hubClient) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.send:
			if !ok {
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(projectID, client)
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(projectID, client)
				return
			}
		}
	}
}

// readLoop discards inbound frames; the stream is server to client only.
func (h *JobHub) readLoop(projectID string, client *hubClient) {
	defer h.remove(projectID, client)
	client.conn.SetReadLimit(512)
	client.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *JobHub) remove(projectID string, client *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[projectID]; ok {
		if _, present := clients[client]; present {
			delete(clients, client)
			close(client.send)
			client.conn.Close()
		}
		if len(clients) == 0 {
			delete(h.clients, projectID)
		}
	}
}
