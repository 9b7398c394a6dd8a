// Package eventstream exposes a read-only websocket tap over every
// mutation signal the cluster fires: every event the relay forwards
// and every event the dispatcher applies locally, tagged with
// direction and method name. It changes no replication semantics —
// it is just another signalbus subscriber, isolated so a slow or
// disconnected dashboard client can never block replication. Grounded
// on internal/websocket/websocket.go's Hub register/unregister/
// broadcast/readPump/writePump shape.
package eventstream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/transport"
	"github.com/beaconhq/zonecore/internal/zlog"
)

var log = zlog.Component("eventstream")

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Envelope is the wire shape every tapped event is broadcast as.
type Envelope struct {
	Method    string    `json:"method"`
	Direction Direction `json:"direction"`
	Object    string    `json:"object,omitempty"`
	Time      float64   `json:"time"`
}

const clientBuffer = 256

type Hub struct {
	clients    map[*client]bool
	broadcast  chan Envelope
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Envelope
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Envelope, clientBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		clients:    make(map[*client]bool),
	}
}

// tappedKinds is the relay's own subscription list plus UpdateRepository —
// every mutation that can be replicated is also worth tailing.
var tappedKinds = []signalbus.Kind{
	domain.KindCheckResult,
	domain.KindNextCheckChanged,
	domain.KindNextNotificationChanged,
	domain.KindForceNextCheckChanged,
	domain.KindForceNextNotifChanged,
	domain.KindEnableActiveChecksChanged,
	domain.KindEnablePassiveChecksChanged,
	domain.KindEnableNotificationsChanged,
	domain.KindEnableFlappingChanged,
	domain.KindEnableEventHandlerChanged,
	domain.KindEnablePerfdataChanged,
	domain.KindCheckIntervalChanged,
	domain.KindRetryIntervalChanged,
	domain.KindMaxCheckAttemptsChanged,
	domain.KindEventCommandChanged,
	domain.KindCheckCommandChanged,
	domain.KindCheckPeriodChanged,
	domain.KindVarsChanged,
	domain.KindCommentAdded,
	domain.KindCommentRemoved,
	domain.KindDowntimeAdded,
	domain.KindDowntimeRemoved,
	domain.KindAcknowledgementSet,
	domain.KindAcknowledgementCleared,
	domain.KindUpdateRepository,
}

func (h *Hub) Subscribe(bus *signalbus.Bus) {
	for _, k := range tappedKinds {
		bus.Subscribe(k, h.onEvent)
	}
}

// onEvent runs synchronously on the firing goroutine, so it must
// never block: a full broadcast channel drops the event rather than
// stalling the caller.
func (h *Hub) onEvent(ev signalbus.Event) {
	env := Envelope{
		Method:    "event::" + string(ev.Kind),
		Direction: directionOf(ev.Origin),
		Object:    objectName(ev.Object),
		Time:      float64(time.Now().UnixNano()) / 1e9,
	}
	select {
	case h.broadcast <- env:
	default:
		log.Debug("broadcast channel full, dropping event", zap.String("kind", string(ev.Kind)))
	}
}

func directionOf(origin any) Direction {
	o, ok := origin.(*transport.MessageOrigin)
	if ok && o != nil && o.FromEndpoint != "" {
		return Inbound
	}
	return Outbound
}

func objectName(obj any) string {
	named, ok := obj.(interface{ FullName() string })
	if !ok {
		return ""
	}
	return named.FullName()
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case env := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				c.enqueue(env)
			}
			h.mu.RUnlock()
		}
	}
}

// enqueue is bounded and drop-oldest: a client too slow to keep up
// loses its oldest queued event rather than blocking the hub or
// getting disconnected.
func (c *client) enqueue(env Envelope) {
	select {
	case c.send <- env:
		return
	default:
	}
	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- env:
	default:
	}
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warning("upgrade failed", zap.Error(err))
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan Envelope, clientBuffer)}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 512
)

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(env)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
